package leagueclient

import "time"

// User is the public account view returned by the API.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// SessionResponse carries an issued session.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// RegisterResponse signals the pending-verification holding state.
type RegisterResponse struct {
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	Email                     string `json:"email"`
	PreviewURL                string `json:"previewUrl,omitempty"`
}

// ResendCodeResponse payload.
type ResendCodeResponse struct {
	Sent       bool   `json:"sent"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// AccountStatus is the status view used by the client-side gate.
type AccountStatus struct {
	Status                 string     `json:"status"`
	Username               string     `json:"username"`
	Reason                 string     `json:"reason,omitempty"`
	SuspensionDate         *time.Time `json:"suspensionDate,omitempty"`
	SuspensionDurationDays *int       `json:"suspensionDurationDays,omitempty"`
}

// Active reports whether the account may use the app unhindered.
func (s AccountStatus) Active() bool { return s.Status == "ACTIVE" }

// Banned reports the terminal state: no appeal path, contact support only.
func (s AccountStatus) Banned() bool { return s.Status == "BANNED" }

// AppealMessage is one conversation entry.
type AppealMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Appeal is a suspension appeal thread.
type Appeal struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	Status       string          `json:"status"`
	Conversation []AppealMessage `json:"conversation"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Notification is one in-app notification.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
