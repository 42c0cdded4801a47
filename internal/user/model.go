package user

import "time"

// Role values mirror the users.role CHECK constraint.
const (
	RoleUnregistered = "UNREGISTERED"
	RoleStreamer     = "STREAMER"
	RoleAdmin        = "ADMIN"
)

// Capability names what a role may do. Roles are plain data; the
// mapping below is the single place authority is derived.
type Capability string

const (
	CapReceiveDonations Capability = "receive_donations"
	CapWithdraw         Capability = "withdraw"
	CapModerate         Capability = "moderate"
)

// Capabilities maps a role to what it is allowed to do.
func Capabilities(role string) []Capability {
	switch role {
	case RoleStreamer:
		return []Capability{CapReceiveDonations, CapWithdraw}
	case RoleAdmin:
		return []Capability{CapReceiveDonations, CapWithdraw, CapModerate}
	default:
		return nil
	}
}

// Can reports whether the role has the given capability.
func Can(role string, cap Capability) bool {
	for _, c := range Capabilities(role) {
		if c == cap {
			return true
		}
	}
	return false
}

// Profile is the full account view returned to the owner (/user/me).
type Profile struct {
	ID                int64      `json:"id"`
	FirstName         string     `json:"first_name"`
	Username          *string    `json:"username"`
	Description       string     `json:"description"`
	ChannelURL        string     `json:"channel_url"`
	ChannelName       *string    `json:"channel_name"`
	ProfileImgURL     string     `json:"profile_img_url"`
	BannerImgURL      string     `json:"banner_img_url"`
	Role              string     `json:"role"`
	APIKey            string     `json:"api_key,omitempty"`
	Online            bool       `json:"online"`
	Enabled           bool       `json:"enabled"`
	Balance           float64    `json:"balance"`
	MinDonationAmount float64    `json:"min_donation_amount"`
	LastOnlineAt      *time.Time `json:"last_online_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Info is the public listing view (admin lists, search results).
type Info struct {
	ID            int64      `json:"id"`
	FirstName     string     `json:"first_name"`
	Username      *string    `json:"username"`
	ChannelName   *string    `json:"channel_name"`
	ProfileImgURL string     `json:"profile_img_url"`
	Online        bool       `json:"online"`
	Enabled       bool       `json:"enabled"`
	LastOnlineAt  *time.Time `json:"last_online_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DonatePage is what the donation page needs about a streamer.
type DonatePage struct {
	ID                int64   `json:"id"`
	FirstName         string  `json:"first_name"`
	ChannelName       *string `json:"channel_name"`
	ChannelURL        string  `json:"channel_url"`
	Description       string  `json:"description"`
	ProfileImgURL     string  `json:"profile_img_url"`
	BannerImgURL      string  `json:"banner_img_url"`
	Online            bool    `json:"online"`
	MinDonationAmount float64 `json:"min_donation_amount"`
}
