package setting

const (
	KeyLogoURL            = "logoUrl"
	KeyFooterLogoURL      = "footerLogoUrl"
	KeyWatermarkLogoURL   = "watermarkLogoUrl"
	KeyFaviconURL         = "faviconUrl"
	KeyPrimaryColor       = "primaryColor"
	KeySecondaryColor     = "secondaryColor"
	KeyAccentColor        = "accentColor"
	KeyTextColor          = "textColor"
	KeyLinkColor          = "linkColor"
	KeyBorderColor        = "borderColor"
	KeyCompanyName        = "companyName"
	KeyCompanyAddress     = "companyAddress"
	KeyCompanyPhone       = "companyPhone"
	KeyCompanyEmail       = "companyEmail"
	KeyCompanyWebsite     = "companyWebsite"
	KeyLogoSize           = "logoSize"
	KeyLogoPosition       = "logoPosition"
	KeyWatermarkOpacity   = "watermarkOpacity"
	KeyFooterText         = "footerText"
	KeyProcedureTitle     = "procedureTitle"
	KeyDataTreatmentTitle = "dataTreatmentTitle"
	KeyImageRightsTitle   = "imageRightsTitle"

	KeyUseCustomEmail = "useCustomEmail"
	KeySMTPHost       = "smtpHost"
	KeySMTPPort       = "smtpPort"
	KeySMTPUser       = "smtpUser"
	KeySMTPPassword   = "smtpPassword"
	KeySMTPFrom       = "smtpFrom"
	KeySMTPFromName   = "smtpFromName"
	KeyUseEncryption  = "useEncryption"
)

// Defaults are the documented values every resolved view starts from.
var Defaults = map[string]string{
	KeyLogoURL:            "",
	KeyFooterLogoURL:      "",
	KeyWatermarkLogoURL:   "",
	KeyFaviconURL:         "",
	KeyPrimaryColor:       "#3B82F6",
	KeySecondaryColor:     "#10B981",
	KeyAccentColor:        "#F59E0B",
	KeyTextColor:          "#1F2937",
	KeyLinkColor:          "#3B82F6",
	KeyBorderColor:        "#D1D5DB",
	KeyCompanyName:        "Consent Management System",
	KeyCompanyAddress:     "",
	KeyCompanyPhone:       "",
	KeyCompanyEmail:       "",
	KeyCompanyWebsite:     "",
	KeyLogoSize:           "60",
	KeyLogoPosition:       "left",
	KeyWatermarkOpacity:   "0.1",
	KeyFooterText:         "",
	KeyProcedureTitle:     "PROCEDURE CONSENT",
	KeyDataTreatmentTitle: "CONSENT FOR THE PROCESSING OF PERSONAL DATA",
	KeyImageRightsTitle:   "EXPRESS CONSENT FOR THE USE OF PERSONAL IMAGES",
}

// EmailDefaults cover the SMTP keys, which are never part of the public view.
var EmailDefaults = map[string]string{
	KeyUseCustomEmail: "false",
	KeySMTPHost:       "",
	KeySMTPPort:       "587",
	KeySMTPUser:       "",
	KeySMTPPassword:   "",
	KeySMTPFrom:       "",
	KeySMTPFromName:   "",
	KeyUseEncryption:  "true",
}

func IsThemeKey(key string) bool {
	_, ok := Defaults[key]
	return ok
}

func IsEmailKey(key string) bool {
	_, ok := EmailDefaults[key]
	return ok
}
