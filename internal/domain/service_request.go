package domain

import (
	"slices"
	"time"
)

// RequestStatus represents the lifecycle status of a service request
type RequestStatus string

const (
	StatusOpen      RequestStatus = "open"
	StatusMatched   RequestStatus = "matched"
	StatusAccepted  RequestStatus = "accepted"
	StatusExpired   RequestStatus = "expired"
	StatusCancelled RequestStatus = "cancelled"
	StatusCompleted RequestStatus = "completed"
)

// Urgency represents how soon the seeker needs the service
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyScheduled Urgency = "scheduled"
	UrgencyFlexible  Urgency = "flexible"
)

// Role is the marketplace role of the authenticated user
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleProvider Role = "provider"
)

// Location is a coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Budget is the price range the seeker is willing to pay
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ServiceRequest represents a seeker's request for a rental/hiring service
type ServiceRequest struct {
	ID                 string  `json:"id"`
	SeekerID           string  `json:"seekerId"`
	AcceptedProviderID *string `json:"acceptedProviderId,omitempty"`

	CategoryID    string  `json:"categoryId"`
	SubCategoryID *string `json:"subCategoryId,omitempty"`

	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address,omitempty"`
	Location    *Location `json:"location,omitempty"`

	ServiceStartDate time.Time `json:"serviceStartDate"`
	ServiceEndDate   time.Time `json:"serviceEndDate"`
	Urgency          Urgency   `json:"urgency"`

	Budget *Budget `json:"budget,omitempty"`

	MatchedProviderIDs []string `json:"matchedProviderIds"`
	ViewCount          int      `json:"viewCount"`

	Status    RequestStatus `json:"status"`
	ExpiresAt time.Time     `json:"expiresAt"`
	OrderID   *string       `json:"orderId,omitempty"`

	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
}

// IsOwnedBy returns true if the user created the request
func (r *ServiceRequest) IsOwnedBy(userID string) bool {
	return r.SeekerID == userID
}

// IsMatchedProvider returns true if the provider is in the matched set
func (r *ServiceRequest) IsMatchedProvider(providerID string) bool {
	return slices.Contains(r.MatchedProviderIDs, providerID)
}

// IsActive returns true if the request can still be accepted, updated or cancelled
func (r *ServiceRequest) IsActive() bool {
	return r.Status == StatusOpen || r.Status == StatusMatched
}

// IsTerminal returns true if the request reached a final status
func (r *ServiceRequest) IsTerminal() bool {
	return IsTerminal(r.Status)
}

// HasAcceptance returns true if the status implies an accepted provider
func (r *ServiceRequest) HasAcceptance() bool {
	return r.Status == StatusAccepted || r.Status == StatusCompleted
}

// Validate checks the record-level invariants
func (r *ServiceRequest) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if (r.AcceptedProviderID != nil) != r.HasAcceptance() {
		return ErrAcceptanceMismatch
	}
	if (r.OrderID != nil) != (r.AcceptedProviderID != nil) {
		return ErrOrderLinkMismatch
	}
	if r.Budget != nil && r.Budget.Min > r.Budget.Max {
		return ErrInvalidBudget
	}
	return nil
}

// Clone returns a deep copy so callers can derive a new record without touching a published one
func (r *ServiceRequest) Clone() *ServiceRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.AcceptedProviderID = cloneString(r.AcceptedProviderID)
	c.SubCategoryID = cloneString(r.SubCategoryID)
	c.OrderID = cloneString(r.OrderID)
	c.CancellationReason = cloneString(r.CancellationReason)
	if r.Location != nil {
		loc := *r.Location
		c.Location = &loc
	}
	if r.Budget != nil {
		b := *r.Budget
		c.Budget = &b
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	c.MatchedProviderIDs = slices.Clone(r.MatchedProviderIDs)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// RequestDraft is the payload of a create command
type RequestDraft struct {
	CategoryID       string    `json:"categoryId"`
	SubCategoryID    *string   `json:"subCategoryId,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Address          string    `json:"address,omitempty"`
	AddressID        *string   `json:"addressId,omitempty"` // reference to a saved address
	Location         *Location `json:"location,omitempty"`
	ServiceStartDate time.Time `json:"serviceStartDate"`
	ServiceEndDate   time.Time `json:"serviceEndDate"`
	Urgency          Urgency   `json:"urgency,omitempty"`
	Budget           *Budget   `json:"budget,omitempty"`
}

// RequestPatch is the payload of an update command, nil fields are left unchanged
type RequestPatch struct {
	SubCategoryID    *string    `json:"subCategoryId,omitempty"`
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Address          *string    `json:"address,omitempty"`
	Location         *Location  `json:"location,omitempty"`
	ServiceStartDate *time.Time `json:"serviceStartDate,omitempty"`
	ServiceEndDate   *time.Time `json:"serviceEndDate,omitempty"`
	Urgency          *Urgency   `json:"urgency,omitempty"`
	Budget           *Budget    `json:"budget,omitempty"`
}

// IsEmpty returns true if the patch changes nothing
func (p *RequestPatch) IsEmpty() bool {
	return p.SubCategoryID == nil && p.Title == nil && p.Description == nil &&
		p.Address == nil && p.Location == nil && p.ServiceStartDate == nil &&
		p.ServiceEndDate == nil && p.Urgency == nil && p.Budget == nil
}

// AcceptQuote is a provider's price commitment
type AcceptQuote struct {
	Price                   float64 `json:"price"`
	Message                 *string `json:"message,omitempty"`
	EstimatedCompletionTime *string `json:"estimatedCompletionTime,omitempty"`
}

// AcceptResult is the outcome of a successful accept: the accepted request and the spawned order
type AcceptResult struct {
	Request *ServiceRequest `json:"request"`
	OrderID string          `json:"orderId"`
}

// ListFilters narrows list fetches
type ListFilters struct {
	Status     *RequestStatus `json:"status,omitempty"`
	CategoryID *string        `json:"categoryId,omitempty"`
	Urgency    *Urgency       `json:"urgency,omitempty"`
	Page       int            `json:"page,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

// RequestPage is one page of a list fetch
type RequestPage struct {
	Requests []*ServiceRequest `json:"requests"`
	Total    int               `json:"total"`
}
