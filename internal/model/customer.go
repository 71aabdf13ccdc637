package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/creditmitra/loanflow/internal/domain"
)

// Customer is the persistence shape of the CRM master record.
type Customer struct {
	ID               string `gorm:"primaryKey;size:32"`
	Name             string `gorm:"size:128;not null"`
	Phone            string `gorm:"size:32;not null"`
	Address          string `gorm:"size:256"`
	PreApprovedLimit int64  `gorm:"not null"`
	CreditScore      int    `gorm:"not null"`
	MonthlySalary    *int64
	Employer         *string `gorm:"size:128"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Customer{})
}

func CustomerToEntity(data Customer) *domain.Customer {
	customer := &domain.Customer{
		ID:               data.ID,
		Name:             data.Name,
		Phone:            data.Phone,
		Address:          data.Address,
		PreApprovedLimit: data.PreApprovedLimit,
		CreditScore:      data.CreditScore,
	}

	if data.MonthlySalary != nil {
		customer.SalaryInfo = &domain.SalaryInfo{MonthlySalary: *data.MonthlySalary}
		if data.Employer != nil {
			customer.SalaryInfo.Employer = *data.Employer
		}
	}

	return customer
}

func CustomerFromEntity(data *domain.Customer) Customer {
	customer := Customer{
		ID:               data.ID,
		Name:             data.Name,
		Phone:            data.Phone,
		Address:          data.Address,
		PreApprovedLimit: data.PreApprovedLimit,
		CreditScore:      data.CreditScore,
	}

	if data.SalaryInfo != nil {
		salary := data.SalaryInfo.MonthlySalary
		customer.MonthlySalary = &salary
		if data.SalaryInfo.Employer != "" {
			employer := data.SalaryInfo.Employer
			customer.Employer = &employer
		}
	}

	return customer
}
