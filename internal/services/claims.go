package services

import (
	"net/url"
	"strconv"
	"strings"

	"payroll-backend/internal/dto"
)

// BuildClaimURLs attaches the assigned payroll id and a shareable redemption
// URL to each claim credential. Pure transform, never fails; the URL embeds
// the plaintext amount and salt, so each link must only reach its own
// recipient.
func BuildClaimURLs(payrollID int64, credentials []dto.ClaimCredential, baseURL string) []dto.ClaimCredential {
	base := strings.TrimRight(baseURL, "/")

	out := make([]dto.ClaimCredential, len(credentials))
	for i, cred := range credentials {
		cred.PayrollID = payrollID

		params := url.Values{}
		params.Set("payrollId", strconv.FormatInt(payrollID, 10))
		params.Set("commitmentIndex", strconv.Itoa(cred.CommitmentIndex))
		params.Set("recipient", cred.Recipient)
		params.Set("amount", cred.Amount)
		params.Set("salt", cred.Salt)

		cred.ClaimURL = base + "/claim?" + params.Encode()
		out[i] = cred
	}
	return out
}
