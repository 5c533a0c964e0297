package dispute

import "fmt"

func overchargePrompt(rulesText, billText string) string {
	return fmt.Sprintf(`
You are a hospital billing auditor AI.

Hospital Rules:
%s

Patient Bill:
%s

Instructions:
- Identify overcharges in the patient bill based on hospital rules.
- For each, provide line number, service, amount, and reason.
- If none, say "No overcharges detected".
`, rulesText, billText)
}

func disputeLetterPrompt(patientName, hospitalName, billText, overchargeReport string) string {
	return fmt.Sprintf(`
Draft a formal letter to dispute overcharges for %s at %s.
Reference the following overcharges and request correction.

Overcharges:
%s

Patient Bill (for line item references):
%s
`, patientName, hospitalName, overchargeReport, billText)
}
