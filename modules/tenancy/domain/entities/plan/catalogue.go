package plan

import (
	"github.com/shopspring/decimal"
)

// Defaults returns the built-in catalogue, ordered from free to custom.
func Defaults() []Plan {
	return []Plan{
		{
			ID:           Free,
			Name:         "Free",
			Description:  "Seven day free trial",
			PriceMonthly: decimal.Zero,
			PriceAnnual:  decimal.Zero,
			Limits: Limits{
				Users: 1, Branches: 1, Consents: 20, MedicalRecords: 5, MRConsentTemplates: 2,
				ConsentTemplates: 3, Services: 3, Questions: 6, StorageMB: 200,
			},
			Features: Features{Backup: BackupNone, SupportResponseTime: "48h"},
		},
		{
			ID:           Basic,
			Name:         "Basic",
			Description:  "For small clinics, practices and aesthetic centres",
			PriceMonthly: decimal.NewFromInt(89900),
			PriceAnnual:  decimal.NewFromInt(895404),
			Limits: Limits{
				Users: 2, Branches: 1, Consents: 100, MedicalRecords: 30, MRConsentTemplates: 5,
				ConsentTemplates: 10, Services: 5, Questions: 10, StorageMB: 500,
			},
			Features: Features{Customization: true, Backup: BackupNone, SupportResponseTime: "24h"},
		},
		{
			ID:           Professional,
			Name:         "Professional",
			Description:  "For mid-sized clinics and medical centres",
			PriceMonthly: decimal.NewFromInt(119900),
			PriceAnnual:  decimal.NewFromInt(1194202),
			Popular:      true,
			Limits: Limits{
				Users: 5, Branches: 3, Consents: 300, MedicalRecords: 100, MRConsentTemplates: 10,
				ConsentTemplates: 20, Services: 15, Questions: 30, StorageMB: 2000,
			},
			Features: Features{
				Customization: true, AdvancedReports: true, PrioritySupport: true,
				Backup: BackupWeekly, SupportResponseTime: "12h",
			},
		},
		{
			ID:           Enterprise,
			Name:         "Enterprise",
			Description:  "For large clinics and hospitals",
			PriceMonthly: decimal.NewFromInt(149900),
			PriceAnnual:  decimal.NewFromInt(1493004),
			Limits: Limits{
				Users: 10, Branches: 5, Consents: 500, MedicalRecords: 300, MRConsentTemplates: 20,
				ConsentTemplates: 30, Services: 30, Questions: 50, StorageMB: 5000,
			},
			Features: Features{
				Customization: true, AdvancedReports: true, PrioritySupport: true, CustomDomain: true,
				Backup: BackupDaily, SupportResponseTime: "4h",
			},
		},
		{
			ID:           Custom,
			Name:         "Custom",
			Description:  "Tailored for large organisations",
			PriceMonthly: decimal.NewFromInt(189900),
			PriceAnnual:  decimal.NewFromInt(1891404),
			Limits: Limits{
				Users: Unlimited, Branches: Unlimited, Consents: Unlimited, MedicalRecords: Unlimited,
				MRConsentTemplates: Unlimited, ConsentTemplates: Unlimited, Services: Unlimited,
				Questions: Unlimited, StorageMB: 10000,
			},
			Features: Features{
				Customization: true, AdvancedReports: true, PrioritySupport: true, CustomDomain: true,
				WhiteLabel: true, APIAccess: true, Backup: BackupDaily, SupportResponseTime: "24/7",
			},
		},
	}
}
