package connection

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/connection"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

type requestResponse struct {
	ID            uuid.UUID                `json:"id"`
	ProviderID    uuid.UUID                `json:"provider_id"`
	BuyerID       uuid.UUID                `json:"buyer_id"`
	Initiator     auth.Role                `json:"initiator"`
	Message       string                   `json:"message,omitempty"`
	ProposedTerms *terms.ContractTerms     `json:"proposed_terms,omitempty"`
	Status        connection.RequestStatus `json:"status"`
	CreatedAt     time.Time                `json:"created_at"`
	ReviewedAt    *time.Time               `json:"reviewed_at,omitempty"`
	RespondedAt   *time.Time               `json:"responded_at,omitempty"`
}

type statsResponse struct {
	TotalLeads     int       `json:"total_leads"`
	TotalPaid      int64     `json:"total_paid"`
	LeadsThisWeek  int       `json:"leads_this_week"`
	LeadsThisMonth int       `json:"leads_this_month"`
	WeekStart      time.Time `json:"week_start"`
	MonthStart     time.Time `json:"month_start"`
}

type connectionResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProviderID        uuid.UUID           `json:"provider_id"`
	BuyerID           uuid.UUID           `json:"buyer_id"`
	Status            connection.Status   `json:"status"`
	Terms             terms.ContractTerms `json:"terms"`
	Stats             statsResponse       `json:"stats"`
	RequestedAt       time.Time           `json:"requested_at"`
	AcceptedAt        time.Time           `json:"accepted_at"`
	TerminatedAt      *time.Time          `json:"terminated_at,omitempty"`
	TerminatedBy      *uuid.UUID          `json:"terminated_by,omitempty"`
	TerminationReason string              `json:"termination_reason,omitempty"`
}

type submissionResponse struct {
	LeadID           uuid.UUID          `json:"lead_id"`
	Connection       connectionResponse `json:"connection"`
	WeeklyRemaining  *int               `json:"weekly_remaining,omitempty"`
	MonthlyRemaining *int               `json:"monthly_remaining,omitempty"`
	PayoutID         uuid.UUID          `json:"payout_id"`
	PayoutAmount     int64              `json:"payout_amount"`
}

func toRequestResponse(req *connection.Request) requestResponse {
	return requestResponse{
		ID:            req.ID,
		ProviderID:    req.ProviderID,
		BuyerID:       req.BuyerID,
		Initiator:     req.Initiator,
		Message:       req.Message,
		ProposedTerms: req.ProposedTerms,
		Status:        req.Status,
		CreatedAt:     req.CreatedAt,
		ReviewedAt:    req.ReviewedAt,
		RespondedAt:   req.RespondedAt,
	}
}

func toRequestResponseList(reqs []*connection.Request) []requestResponse {
	resp := make([]requestResponse, len(reqs))
	for i, req := range reqs {
		resp[i] = toRequestResponse(req)
	}

	return resp
}

func toConnectionResponse(conn *connection.Connection) connectionResponse {
	return connectionResponse{
		ID:         conn.ID,
		ProviderID: conn.ProviderID,
		BuyerID:    conn.BuyerID,
		Status:     conn.Status,
		Terms:      conn.Terms,
		Stats: statsResponse{
			TotalLeads:     conn.Stats.TotalLeads,
			TotalPaid:      conn.Stats.TotalPaid,
			LeadsThisWeek:  conn.Stats.LeadsThisWeek,
			LeadsThisMonth: conn.Stats.LeadsThisMonth,
			WeekStart:      conn.Stats.WeekStart,
			MonthStart:     conn.Stats.MonthStart,
		},
		RequestedAt:       conn.RequestedAt,
		AcceptedAt:        conn.AcceptedAt,
		TerminatedAt:      conn.TerminatedAt,
		TerminatedBy:      conn.TerminatedBy,
		TerminationReason: conn.TerminationReason,
	}
}

func toConnectionResponseList(conns []*connection.Connection) []connectionResponse {
	resp := make([]connectionResponse, len(conns))
	for i, conn := range conns {
		resp[i] = toConnectionResponse(conn)
	}

	return resp
}

func toSubmissionResponse(result *connection.SubmissionResult) submissionResponse {
	return submissionResponse{
		LeadID:           result.LeadID,
		Connection:       toConnectionResponse(result.Connection),
		WeeklyRemaining:  result.CapStatus.WeeklyRemaining,
		MonthlyRemaining: result.CapStatus.MonthlyRemaining,
		PayoutID:         result.Payout.ID,
		PayoutAmount:     result.Payout.Amount,
	}
}
