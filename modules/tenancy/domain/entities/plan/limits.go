package plan

type Limits struct {
	Users              int `json:"users" yaml:"users" validate:"gte=-1"`
	Branches           int `json:"branches" yaml:"branches" validate:"gte=-1"`
	Consents           int `json:"consents" yaml:"consents" validate:"gte=-1"`
	MedicalRecords     int `json:"medicalRecords" yaml:"medicalRecords" validate:"gte=-1"`
	MRConsentTemplates int `json:"mrConsentTemplates" yaml:"mrConsentTemplates" validate:"gte=-1"`
	ConsentTemplates   int `json:"consentTemplates" yaml:"consentTemplates" validate:"gte=-1"`
	Services           int `json:"services" yaml:"services" validate:"gte=-1"`
	Questions          int `json:"questions" yaml:"questions" validate:"gte=-1"`
	StorageMB          int `json:"storageMb" yaml:"storageMb" validate:"gte=-1,ne=0"`
}

func (l Limits) Get(r Resource) int {
	switch r {
	case ResourceUsers:
		return l.Users
	case ResourceBranches:
		return l.Branches
	case ResourceConsents:
		return l.Consents
	case ResourceMedicalRecords:
		return l.MedicalRecords
	case ResourceMRConsentTemplates:
		return l.MRConsentTemplates
	case ResourceConsentTemplates:
		return l.ConsentTemplates
	case ResourceServices:
		return l.Services
	case ResourceQuestions:
		return l.Questions
	case ResourceStorage:
		return l.StorageMB
	}
	return 0
}

func (l Limits) With(r Resource, v int) Limits {
	switch r {
	case ResourceUsers:
		l.Users = v
	case ResourceBranches:
		l.Branches = v
	case ResourceConsents:
		l.Consents = v
	case ResourceMedicalRecords:
		l.MedicalRecords = v
	case ResourceMRConsentTemplates:
		l.MRConsentTemplates = v
	case ResourceConsentTemplates:
		l.ConsentTemplates = v
	case ResourceServices:
		l.Services = v
	case ResourceQuestions:
		l.Questions = v
	case ResourceStorage:
		l.StorageMB = v
	}
	return l
}

// PartialLimits carries caller supplied limits; nil means "take the plan's".
type PartialLimits struct {
	Users              *int `json:"users,omitempty" validate:"omitempty,gte=-1"`
	Branches           *int `json:"branches,omitempty" validate:"omitempty,gte=-1"`
	Consents           *int `json:"consents,omitempty" validate:"omitempty,gte=-1"`
	MedicalRecords     *int `json:"medicalRecords,omitempty" validate:"omitempty,gte=-1"`
	MRConsentTemplates *int `json:"mrConsentTemplates,omitempty" validate:"omitempty,gte=-1"`
	ConsentTemplates   *int `json:"consentTemplates,omitempty" validate:"omitempty,gte=-1"`
	Services           *int `json:"services,omitempty" validate:"omitempty,gte=-1"`
	Questions          *int `json:"questions,omitempty" validate:"omitempty,gte=-1"`
	StorageMB          *int `json:"storageMb,omitempty" validate:"omitempty,gte=-1,ne=0"`
}

func (p PartialLimits) Get(r Resource) (int, bool) {
	var v *int
	switch r {
	case ResourceUsers:
		v = p.Users
	case ResourceBranches:
		v = p.Branches
	case ResourceConsents:
		v = p.Consents
	case ResourceMedicalRecords:
		v = p.MedicalRecords
	case ResourceMRConsentTemplates:
		v = p.MRConsentTemplates
	case ResourceConsentTemplates:
		v = p.ConsentTemplates
	case ResourceServices:
		v = p.Services
	case ResourceQuestions:
		v = p.Questions
	case ResourceStorage:
		v = p.StorageMB
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Overrides returns the kinds that were set, in Resources order.
func (p PartialLimits) Overrides() []Resource {
	var out []Resource
	for _, r := range Resources {
		if _, ok := p.Get(r); ok {
			out = append(out, r)
		}
	}
	return out
}

// Apply fills every unset kind from base.
func (p PartialLimits) Apply(base Limits) Limits {
	out := base
	for _, r := range Resources {
		if v, ok := p.Get(r); ok {
			out = out.With(r, v)
		}
	}
	return out
}
