package sanctionrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/creditmitra/loanflow/internal/domain"
	"github.com/creditmitra/loanflow/internal/repository"
	"github.com/creditmitra/loanflow/pkg/common"
)

// letterStore renders sanction letters to a local directory. The letter is a
// plain-text document standing in for the production PDF renderer.
type letterStore struct {
	dir string
	log *zap.Logger
}

func NewLetterStore(dir string, log *zap.Logger) (repository.SanctionRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sanction dir %s: %w", dir, err)
	}

	return &letterStore{dir: dir, log: log}, nil
}

func (s *letterStore) Generate(
	ctx context.Context,
	customer *domain.Customer,
	amount int64,
	tenureMonths int,
	rate, emi decimal.Decimal,
) (string, error) {
	filename := fmt.Sprintf("sanction_%s_%s.txt", customer.ID, uuid.New().String()[:8])
	path := filepath.Join(s.dir, filename)

	var b strings.Builder
	fmt.Fprintf(&b, "LOAN SANCTION LETTER\n")
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Customer: %s (%s)\n", customer.Name, customer.ID)
	fmt.Fprintf(&b, "Address: %s\n\n", customer.Address)
	fmt.Fprintf(&b, "Sanctioned Amount: ₹%s\n", common.FormatCommaInt(amount))
	fmt.Fprintf(&b, "Interest Rate: %s%% p.a.\n", rate.String())
	fmt.Fprintf(&b, "Tenure: %d months\n", tenureMonths)
	fmt.Fprintf(&b, "Monthly Installment (EMI): ₹%s\n\n", common.FormatComma2(emi))
	fmt.Fprintf(&b, "This sanction is subject to the standard terms and conditions.\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing sanction letter: %w", err)
	}

	s.log.Info("Generated sanction letter",
		zap.String("customer_id", customer.ID),
		zap.String("filename", filename),
		zap.Int64("amount", amount),
	)

	return filename, nil
}

// Resolve maps a letter filename back to its on-disk path. The filename is
// flattened to its base to keep lookups inside the sanction directory.
func (s *letterStore) Resolve(filename string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(filename))

	if _, err := os.Stat(path); err != nil {
		return "", common.ErrFileNotFound
	}

	return path, nil
}
