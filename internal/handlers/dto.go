package handlers

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	OTPCode  string `json:"otp_code" validate:"required,numeric,len=6"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UpdateProfileRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
}

type ProfileResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	IsAdmin     bool       `json:"is_admin"`
	OTPEnabled  bool       `json:"otp_enabled"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// --- 2FA ---

type OTPSecureRequest struct {
	OTPCode string `json:"otp_code" validate:"required,numeric,len=6"`
}

type OTPSetupResponse struct {
	Secret  string `json:"secret"`
	QRCode  string `json:"qr_code"` // Base64 PNG
	AuthURL string `json:"auth_url"`
}

// --- Projekte ---

type CreateProjectRequest struct {
	Name          string `json:"name" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	ScrumMasterID string `json:"scrum_master_id" validate:"required,uuid"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=PRODUCT_OWNER SCRUM_MASTER DEVELOPER"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=PRODUCT_OWNER SCRUM_MASTER DEVELOPER"`
}

// --- Sprints ---

type CreateSprintRequest struct {
	StartDate string `json:"start_date" validate:"required,dateonly"`
	EndDate   string `json:"end_date" validate:"required,dateonly"`
	Velocity  int    `json:"velocity" validate:"gte=0"`
}

type UpdateSprintRequest struct {
	StartDate *string `json:"start_date,omitempty" validate:"omitempty,dateonly"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,dateonly"`
	Velocity  *int    `json:"velocity,omitempty" validate:"omitempty,gte=0"`
}

// --- Stories ---

type CreateStoryRequest struct {
	Name               string `json:"name" validate:"required,min=3,max=200"`
	Description        string `json:"description" validate:"max=5000"`
	AcceptanceCriteria string `json:"acceptance_criteria" validate:"max=5000"`
	Priority           string `json:"priority" validate:"required,oneof=MUST_HAVE SHOULD_HAVE COULD_HAVE WONT_HAVE"`
	BusinessValue      int    `json:"business_value" validate:"gte=0"`
}

type UpdateStoryRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description        *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	AcceptanceCriteria *string `json:"acceptance_criteria,omitempty" validate:"omitempty,max=5000"`
	Priority           *string `json:"priority,omitempty" validate:"omitempty,oneof=MUST_HAVE SHOULD_HAVE COULD_HAVE WONT_HAVE"`
	BusinessValue      *int    `json:"business_value,omitempty" validate:"omitempty,gte=0"`
}

type EstimateStoryRequest struct {
	StoryPoints int `json:"story_points" validate:"required,gt=0"`
}

type UpdateStoryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS DONE ACCEPTED REJECTED"`
}

type AddStoriesToSprintRequest struct {
	StoryIDs []string `json:"story_ids" validate:"required,min=1,dive,uuid"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// --- Tasks ---

type CreateTaskRequest struct {
	Title          string  `json:"title" validate:"required,min=3,max=200"`
	Description    string  `json:"description" validate:"max=5000"`
	EstimatedHours float64 `json:"estimated_hours" validate:"gte=0"`
}

type UpdateTaskRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
}

type StopTaskRequest struct {
	HoursSpent  *float64 `json:"hours_spent,omitempty" validate:"omitempty,gt=0"`
	Description string   `json:"description" validate:"max=2000"`
}

type CompleteTaskRequest struct {
	EstimatedHours *float64 `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	HoursSpent     *float64 `json:"hours_spent,omitempty" validate:"omitempty,gt=0"`
	Description    string   `json:"description" validate:"max=2000"`
}

type CreateTimeLogRequest struct {
	HoursSpent  float64 `json:"hours_spent" validate:"required,gt=0"`
	Date        string  `json:"date,omitempty" validate:"omitempty,dateonly"` // leer = heute
	Description string  `json:"description" validate:"max=2000"`
}

type UpdateTimeLogRequest struct {
	HoursSpent  float64 `json:"hours_spent" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=2000"`
}

type StartSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	Resumed   bool      `json:"resumed"`
}

type OpenSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	StartTime time.Time `json:"start_time"`
}

type StopSessionResponse struct {
	SessionID  uuid.UUID `json:"session_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	HoursSpent float64   `json:"hours_spent"`
}

// --- Pinnwand und Dokumente ---

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"max=100000"`
}

type UpdateDocumentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"max=100000"`
}
