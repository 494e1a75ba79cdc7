package models

import "time"

// Role represents user roles in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleMechanic Role = "mechanic"
	RoleCustomer Role = "customer"
)

// Permission names checked by the HTTP layer.
const (
	PermViewBookings   = "view_bookings"
	PermCreateBooking  = "create_booking"
	PermUpdateBooking  = "update_booking"
	PermAssignMechanic = "assign_mechanic"
	PermNotifyCustomer = "notify_customer"
	PermViewSchedule   = "view_schedule"
	PermViewMechanics  = "view_mechanics"
	PermManageStaff    = "manage_staff"
	PermViewInvoices   = "view_invoices"
	PermManageInvoices = "manage_invoices"
	PermManageUsers    = "manage_users"
	PermViewQuotes     = "view_quotes"
	PermRequestQuote   = "request_quote"
	PermManageQuotes   = "manage_quotes"
	PermViewVehicles   = "view_vehicles"
	PermManageVehicles = "manage_vehicles"
	PermViewAnalytics  = "view_analytics"
)

// User represents a user in the system
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Username     string     `bson:"username" json:"username"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	FirstName    string     `bson:"first_name" json:"first_name"`
	LastName     string     `bson:"last_name" json:"last_name"`
	IsActive     bool       `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMechanic, RoleCustomer:
		return true
	default:
		return false
	}
}

var rolePermissions = map[Role][]string{
	RoleMechanic: {
		PermViewBookings, PermUpdateBooking, PermViewSchedule, PermViewMechanics,
		PermViewVehicles,
	},
	RoleCustomer: {
		PermViewBookings, PermCreateBooking, PermViewSchedule,
		PermViewQuotes, PermRequestQuote, PermViewVehicles, PermManageVehicles,
	},
}

// HasPermission checks if a user has permission for a specific action.
// Admins can do anything; managers everything except user management.
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return action != PermManageUsers
	}
	for _, allowed := range rolePermissions[u.Role] {
		if allowed == action {
			return true
		}
	}
	return false
}
