package domain

import (
	"github.com/shopspring/decimal"
)

type SalaryInfo struct {
	MonthlySalary int64  `json:"salary"`
	Employer      string `json:"employer,omitempty"`
}

// Customer is the master record supplied by the CRM store. It is read-only
// for the conversation core.
type Customer struct {
	ID               string
	Name             string
	Phone            string
	Address          string
	PreApprovedLimit int64
	CreditScore      int
	SalaryInfo       *SalaryInfo
}

// Stage is the conversational state of a session. It is the only mutable
// control attribute of a Session.
type Stage string

const (
	StageInit           Stage = "INIT"
	StageKycPending     Stage = "KYC_PENDING"
	StageKycVerified    Stage = "KYC_VERIFIED"
	StageUnderwriting   Stage = "UNDERWRITING"
	StageConsentPending Stage = "CONSENT_PENDING"
	StageApproved       Stage = "APPROVED"
	StageClosed         Stage = "CLOSED"
)

// PendingApproval is the approved-but-unconfirmed loan stashed on a session
// while it sits in CONSENT_PENDING. It is cleared on any transition out of
// that stage.
type PendingApproval struct {
	Amount       int64           `json:"amount"`
	TenureMonths int             `json:"tenure_months"`
	Rate         decimal.Decimal `json:"rate"`
	EMI          decimal.Decimal `json:"emi"`
}

// Session holds per-conversation state keyed by an opaque identifier supplied
// by the caller. CustomerID never changes after first assignment.
type Session struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customer_id"`
	Stage           Stage            `json:"stage"`
	PendingApproval *PendingApproval `json:"pending_approval,omitempty"`
}

type DecisionStatus string

const (
	DecisionReject          DecisionStatus = "REJECT"
	DecisionRequireDocument DecisionStatus = "REQ_DOC"
	DecisionApprove         DecisionStatus = "APPROVE"
)

// Decision is the tagged result of an underwriting evaluation. Reason is set
// for REJECT and REQ_DOC; ApprovedAmount, Rate and EMI are set for APPROVE.
type Decision struct {
	Status         DecisionStatus
	Reason         string
	ApprovedAmount int64
	Rate           decimal.Decimal
	EMI            decimal.Decimal
}

// Offer is a derived product offer; it is never stored.
type Offer struct {
	ProductID   string
	MaxLimit    int64
	RatePercent decimal.Decimal
}

type ReplyRole string

const (
	RoleMaster       ReplyRole = "master"
	RoleSales        ReplyRole = "sales"
	RoleVerification ReplyRole = "verification"
	RoleUnderwriting ReplyRole = "underwriting"
	RoleSanction     ReplyRole = "sanction"
	RoleSystem       ReplyRole = "system"
)

// Reply is a single outbound chat message.
type Reply struct {
	Role ReplyRole
	Text string
	Meta map[string]string
}

// ChatResult is the ordered reply sequence for one inbound turn, plus the
// sanction artifact reference when one was generated during the turn.
type ChatResult struct {
	Replies     []Reply
	SanctionURL string
}
