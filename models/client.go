package models

import (
	"strings"
	"time"
)

// Client is a customer invoices are addressed to.
type Client struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientInput is used for creating clients.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (c *ClientInput) Validate() string {
	c.Name = strings.TrimSpace(c.Name)
	return c.Client().Validate()
}

// Client builds the record stored for this input.
func (c *ClientInput) Client() Client {
	return Client{Name: c.Name, Email: c.Email, Address: c.Address, Phone: c.Phone}
}

// ClientPatch carries the fields supplied on update. Nil fields are left
// untouched.
type ClientPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// Apply merges the patch into c and returns the merged record.
func (p ClientPatch) Apply(c Client) Client {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	return c
}

// Validate checks a merged record before it is written.
func (c Client) Validate() string {
	if strings.TrimSpace(c.Name) == "" {
		return "name is required"
	}
	return ""
}

// MatchesSearch reports whether name or email contains q, ignoring case.
func (c Client) MatchesSearch(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q)
}
