// Package pdf renders sanction letters as HTML and converts them to PDF
// through Gotenberg.
package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// SanctionLetterData holds everything the letter template needs.
type SanctionLetterData struct {
	LetterNumber   string
	IssuedOn       string
	ValidUntil     string
	CustomerName   string
	Phone          string
	Address        string
	City           string
	LoanAmount     float64
	TenureMonths   int
	InterestRate   float64
	MonthlyEMI     float64
	TotalRepayment float64
	TotalInterest  float64
	LoanPurpose    string
	VerifyURL      string
	QRCodeDataURI  template.URL
}

// letterValidity is how long a sanction letter stays valid.
const letterValidity = 30 * 24 * time.Hour

var sanctionTemplate = template.Must(template.New("sanction").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #111827; margin: 40px; }
  .header { display: flex; justify-content: space-between; align-items: center; border-bottom: 3px solid #2563eb; padding-bottom: 16px; }
  .brand { font-size: 26px; font-weight: 700; color: #2563eb; }
  .meta { text-align: right; font-size: 12px; color: #6b7280; }
  h1 { font-size: 20px; margin-top: 28px; }
  .greeting { margin-top: 20px; }
  table.terms { width: 100%; border-collapse: collapse; margin-top: 20px; }
  table.terms th, table.terms td { border: 1px solid #e2e8f0; padding: 8px 12px; font-size: 13px; text-align: left; }
  table.terms th { background: #f1f5f9; width: 40%; }
  .summary { margin-top: 20px; background: #f9fafb; padding: 14px 18px; border-radius: 6px; font-size: 13px; }
  .conditions { margin-top: 24px; font-size: 12px; color: #374151; }
  .footer { margin-top: 40px; display: flex; justify-content: space-between; align-items: flex-end; }
  .qr { text-align: center; font-size: 10px; color: #6b7280; }
  .qr img { width: 110px; height: 110px; }
</style>
</head>
<body>
  <div class="header">
    <div class="brand">CredSaathi</div>
    <div class="meta">
      Sanction Letter No: {{.LetterNumber}}<br>
      Issued: {{.IssuedOn}}<br>
      Valid until: {{.ValidUntil}}
    </div>
  </div>

  <h1>Loan Sanction Letter</h1>

  <p class="greeting">Dear {{.CustomerName}},</p>
  <p>We are pleased to inform you that your personal loan application has been approved on the following terms:</p>

  <table class="terms">
    <tr><th>Sanctioned Amount</th><td>&#8377; {{printf "%.2f" .LoanAmount}}</td></tr>
    <tr><th>Tenure</th><td>{{.TenureMonths}} months</td></tr>
    <tr><th>Interest Rate</th><td>{{printf "%.2f" .InterestRate}}% per annum (reducing balance)</td></tr>
    <tr><th>Monthly EMI</th><td>&#8377; {{printf "%.2f" .MonthlyEMI}}</td></tr>
    {{if .LoanPurpose}}<tr><th>Purpose</th><td>{{.LoanPurpose}}</td></tr>{{end}}
  </table>

  <div class="summary">
    Total repayment over the full tenure: <strong>&#8377; {{printf "%.2f" .TotalRepayment}}</strong>,
    of which interest: <strong>&#8377; {{printf "%.2f" .TotalInterest}}</strong>.
  </div>

  <div class="conditions">
    <strong>Conditions:</strong>
    <ol>
      <li>This sanction is valid until {{.ValidUntil}} and lapses automatically thereafter.</li>
      <li>Disbursal is subject to execution of the loan agreement and standard KYC checks.</li>
      <li>EMIs are collected by auto-debit on the 5th of every month.</li>
      <li>Prepayment is allowed after 6 EMIs without penalty.</li>
    </ol>
  </div>

  <div class="footer">
    <div>
      <p>Warm regards,<br><strong>CredSaathi Lending Team</strong><br>support@credsaathi.com</p>
    </div>
    {{if .QRCodeDataURI}}
    <div class="qr">
      <img src="{{.QRCodeDataURI}}" alt="verification QR">
      <div>Scan to verify this letter</div>
    </div>
    {{end}}
  </div>
</body>
</html>
`))

// RenderSanctionLetter produces the letter HTML. When VerifyURL is set a
// QR code pointing at it is embedded as a data URI.
func RenderSanctionLetter(data SanctionLetterData) ([]byte, error) {
	if data.VerifyURL != "" && data.QRCodeDataURI == "" {
		png, err := qrcode.Encode(data.VerifyURL, qrcode.Medium, 220)
		if err != nil {
			return nil, fmt.Errorf("encode verification QR: %w", err)
		}
		data.QRCodeDataURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}

	var buf bytes.Buffer
	if err := sanctionTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render sanction letter: %w", err)
	}
	return buf.Bytes(), nil
}
