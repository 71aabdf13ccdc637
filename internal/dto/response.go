package dto

import (
	"github.com/creditmitra/loanflow/internal/domain"
)

type ReplyResponse struct {
	Role string            `json:"role"`
	Text string            `json:"text"`
	Meta map[string]string `json:"meta,omitempty"`
}

type ChatResponse struct {
	Replies     []ReplyResponse `json:"replies"`
	SanctionURL string          `json:"sanctionUrl,omitempty"`
}

type OfferResponse struct {
	ProductID   string  `json:"product_id"`
	MaxLimit    int64   `json:"max_limit"`
	RatePercent float64 `json:"rate"`
}

type OffersResponse struct {
	Offers []OfferResponse `json:"offers"`
}

type UploadResponse struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

type CustomerProfileResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PreApprovedLimit int64  `json:"pre_approved_limit"`
	CreditScore      int    `json:"credit_score"`
}

// --- Mapping --- //

func ChatResultToResponse(result *domain.ChatResult) ChatResponse {
	replies := make([]ReplyResponse, len(result.Replies))
	for i, r := range result.Replies {
		replies[i] = ReplyResponse{
			Role: string(r.Role),
			Text: r.Text,
			Meta: r.Meta,
		}
	}

	return ChatResponse{
		Replies:     replies,
		SanctionURL: result.SanctionURL,
	}
}

func OffersToResponse(offers []domain.Offer) OffersResponse {
	out := make([]OfferResponse, len(offers))
	for i, o := range offers {
		rate, _ := o.RatePercent.Float64()
		out[i] = OfferResponse{
			ProductID:   o.ProductID,
			MaxLimit:    o.MaxLimit,
			RatePercent: rate,
		}
	}

	return OffersResponse{Offers: out}
}

func CustomerToProfileResponse(customer *domain.Customer) CustomerProfileResponse {
	return CustomerProfileResponse{
		ID:               customer.ID,
		Name:             customer.Name,
		Phone:            customer.Phone,
		Address:          customer.Address,
		PreApprovedLimit: customer.PreApprovedLimit,
		CreditScore:      customer.CreditScore,
	}
}
