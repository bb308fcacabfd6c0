package domain

import "fmt"

// AccountRole is a canonical posting role. The concrete account behind each
// role is configured per deployment in the chart of accounts.
type AccountRole string

const (
	RoleBank              AccountRole = "BANK"
	RoleAR                AccountRole = "AR"
	RoleAP                AccountRole = "AP"
	RoleVATOut            AccountRole = "VAT_OUT"
	RoleVATIn             AccountRole = "VAT_IN"
	RoleRevenue           AccountRole = "REV"
	RoleExpense           AccountRole = "EXP"
	RoleTaxCorpPayable    AccountRole = "TAX_CORP_PAYABLE"
	RoleTaxCorpExpense    AccountRole = "TAX_CORP_EXP"
	RoleFXGain            AccountRole = "FX_GAIN"
	RoleFXLoss            AccountRole = "FX_LOSS"
	RoleFixedAsset        AccountRole = "FIXED_ASSET"
	RoleAccumDepreciation AccountRole = "ACCUM_DEPR"
	RoleDepreciationExp   AccountRole = "DEPR_EXP"
	RoleDisposalGain      AccountRole = "ASSET_DISPOSAL_GAIN"
	RoleDisposalLoss      AccountRole = "ASSET_DISPOSAL_LOSS"
)

var allRoles = []AccountRole{
	RoleBank, RoleAR, RoleAP, RoleVATOut, RoleVATIn, RoleRevenue, RoleExpense,
	RoleTaxCorpPayable, RoleTaxCorpExpense, RoleFXGain, RoleFXLoss,
	RoleFixedAsset, RoleAccumDepreciation, RoleDepreciationExp, RoleDisposalGain, RoleDisposalLoss,
}

// AllRoles returns every known role in a stable order.
func AllRoles() []AccountRole {
	out := make([]AccountRole, len(allRoles))
	copy(out, allRoles)
	return out
}

// IsValid reports whether r is a known role.
func (r AccountRole) IsValid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseAccountRole converts an external string into a role.
func ParseAccountRole(s string) (AccountRole, error) {
	r := AccountRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown account role %q", s)
	}
	return r, nil
}

// DefaultRoleAccounts is the seed chart used by fresh deployments.
var DefaultRoleAccounts = map[AccountRole]string{
	RoleBank:              "1000",
	RoleAR:                "1100",
	RoleVATIn:             "1200",
	RoleFixedAsset:        "1500",
	RoleAccumDepreciation: "1590",
	RoleAP:                "2000",
	RoleVATOut:            "2100",
	RoleTaxCorpPayable:    "2200",
	RoleRevenue:           "4000",
	RoleFXGain:            "4900",
	RoleDisposalGain:      "4910",
	RoleExpense:           "5000",
	RoleDepreciationExp:   "5100",
	RoleFXLoss:            "5800",
	RoleDisposalLoss:      "5810",
	RoleTaxCorpExpense:    "5900",
}

// RoleMapping binds a role to an account code.
type RoleMapping struct {
	Role        AccountRole `json:"role"`
	AccountCode string      `json:"accountCode"`
	AuditFields
}
