package verificationsrv

import (
	"strings"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/service"
)

type verificationService struct{}

// NewVerificationService returns the demo KYC check: phone digit equality
// against the master record. No external KYC provider is involved.
func NewVerificationService() service.VerificationServices {
	return &verificationService{}
}

// VerifyIdentity normalizes both phone values to bare digits and compares
// for exact equality. An empty normalized input never verifies.
func (v *verificationService) VerifyIdentity(customer *domain.Customer, providedPhone string) bool {
	provided := digitsOnly(providedPhone)
	if provided == "" {
		return false
	}

	return provided == digitsOnly(customer.Phone)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
