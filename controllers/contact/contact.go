package contactControllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactSender is what this handler needs from the mailer.
type ContactSender interface {
	SendContactMessage(name, email, subject, message string) error
}

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// POST /contact
func SubmitContactForm(mail ContactSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ContactInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := mail.SendContactMessage(input.Name, input.Email, input.Subject, input.Message); err != nil {
			log.Printf("⚠️ Contact form relay failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while sending your message. Please try again."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Your message has been sent successfully. Thank you for contacting us!"})
	}
}
