package model

import "time"

// Role values accepted in the users.role column.
const (
    RoleUser    = "user"
    RoleManager = "manager"
    RoleAdmin   = "admin"
)

// Hostel request status values for users.hostel_request_status.
const (
    HostelRequestNone     = "none"
    HostelRequestPending  = "pending"
    HostelRequestApproved = "approved"
    HostelRequestRejected = "rejected"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column. The json tags
// are omitted because these structs are used internally by the
// repository layer; the sanitized Snapshot type below is what
// handlers and the session cache serialize.
//
// Fields:
//  ID                  – primary key identifier of the user.
//  Name                – display name.
//  Email               – unique, lowercased email address.
//  Phone               – contact phone number (digits only).
//  PasswordHash        – bcrypt hashed password; empty for social accounts.
//  AvatarPublicID      – storage identifier of the avatar (optional).
//  AvatarURL           – public URL of the avatar (optional).
//  Role                – one of user/manager/admin.
//  IsActive            – false until email activation succeeds.
//  HostelRequestStatus – none/pending/approved/rejected.
//  HostelID            – assigned hostel, nil when unassigned.
//  CreatedAt           – timestamp of creation.
//  UpdatedAt           – timestamp of last update.
type User struct {
    ID                  uint64    // users.id
    Name                string    // users.name
    Email               string    // users.email
    Phone               string    // users.phone
    PasswordHash        string    // users.password_hash
    AvatarPublicID      string    // users.avatar_public_id
    AvatarURL           string    // users.avatar_url
    Role                string    // users.role
    IsActive            bool      // users.is_active
    HostelRequestStatus string    // users.hostel_request_status
    HostelID            *uint64   // users.hostel_id (nullable)
    CreatedAt           time.Time // users.created_at
    UpdatedAt           time.Time // users.updated_at
}

// Snapshot is the externally visible shape of a user. It is what
// login and me return and what the session cache stores as JSON.
// The password hash never appears here.
type Snapshot struct {
    ID                  uint64  `json:"id"`
    Name                string  `json:"name"`
    Email               string  `json:"email"`
    Phone               string  `json:"phone"`
    AvatarPublicID      string  `json:"avatar_public_id,omitempty"`
    AvatarURL           string  `json:"avatar_url,omitempty"`
    Role                string  `json:"role"`
    IsActive            bool    `json:"is_active"`
    HostelRequestStatus string  `json:"hostel_request_status"`
    HostelID            *uint64 `json:"hostel_id,omitempty"`
}

// Sanitize strips the credential fields from a User and returns the
// snapshot used in responses and in the session cache.
func (u User) Sanitize() Snapshot {
    return Snapshot{
        ID:                  u.ID,
        Name:                u.Name,
        Email:               u.Email,
        Phone:               u.Phone,
        AvatarPublicID:      u.AvatarPublicID,
        AvatarURL:           u.AvatarURL,
        Role:                u.Role,
        IsActive:            u.IsActive,
        HostelRequestStatus: u.HostelRequestStatus,
        HostelID:            u.HostelID,
    }
}
