// models/site.go
package models

import "time"

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// NewsletterSubscriber is one signup, deduplicated by email.
type NewsletterSubscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// Event is a competition category shown as a tab on the site. Its id is a
// slug derived from the name and is what score records reference.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
