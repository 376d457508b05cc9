package services

const invoiceHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Invoice #{{.OrderID}}</title>
  <style>
    body { font-family: Arial, sans-serif; color: #222; margin: 0; padding: 24px; }
    .invoice { max-width: 640px; margin: 0 auto; border: 1px solid #ddd; padding: 24px; }
    .header { display: flex; justify-content: space-between; border-bottom: 2px solid #333; padding-bottom: 12px; }
    table { width: 100%; border-collapse: collapse; margin-top: 16px; }
    th, td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
    .total { font-weight: bold; text-align: right; margin-top: 16px; }
    .muted { color: #777; font-size: 12px; }
  </style>
</head>
<body>
<div class="invoice">
  <div class="header">
    <h2>{{.SiteName}}</h2>
    <div>
      <div>Invoice #{{.OrderID}}</div>
      <div class="muted">{{.OrderDate}}</div>
    </div>
  </div>

  <h3>Billed to</h3>
  <div>{{.BuyerName}}</div>
  {{- if .Company}}
  <div>{{.Company}}</div>
  {{- end}}
  {{- range .AddressLines}}
  <div>{{.}}</div>
  {{- end}}
  <div>{{.Email}}</div>
  {{- if .Phone}}
  <div>{{.Phone}}</div>
  {{- end}}

  <table>
    <thead>
      <tr><th>Item</th><th>Amount</th></tr>
    </thead>
    <tbody>
      <tr><td>{{.PackageName}}</td><td>{{.Amount}} {{.Currency}}</td></tr>
    </tbody>
  </table>

  <div class="total">Total: {{.Amount}} {{.Currency}}</div>
  <p>Payment status: {{.PaymentStatus}}<br>Payment method: {{.PaymentMethod}}</p>
  <p class="muted">Thank you for boosting your listing with {{.SiteName}}.</p>
</div>
</body>
</html>
`

const invoiceTextTemplate = `{{.SiteName}} - Invoice #{{.OrderID}}
Date: {{.OrderDate}}

Billed to:
{{.BuyerName}}
{{- if .Company}}
{{.Company}}
{{- end}}
{{- range .AddressLines}}
{{.}}
{{- end}}
{{.Email}}
{{- if .Phone}}
{{.Phone}}
{{- end}}

Item: {{.PackageName}}
Total: {{.Amount}} {{.Currency}}
Payment status: {{.PaymentStatus}}
Payment method: {{.PaymentMethod}}

Thank you for boosting your listing with {{.SiteName}}.
`

const expiringHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hello {{.BuyerName}},</p>
  <p>The boost for your listing <strong>{{.Title}}</strong> expires on {{.ExpiryDate}}.</p>
  <p>Renew it to keep your listing at the top of the results.</p>
  <p>{{.SiteName}}</p>
</body>
</html>
`

const expiringTextTemplate = `Hello {{.BuyerName}},

The boost for your listing "{{.Title}}" expires on {{.ExpiryDate}}.
Renew it to keep your listing at the top of the results.

{{.SiteName}}
`

const expiredHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hello {{.BuyerName}},</p>
  <p>The boost for your listing <strong>{{.Title}}</strong> expired on {{.ExpiryDate}}.</p>
  <p>Your listing is still published but no longer promoted. You can purchase a new boost at any time.</p>
  <p>{{.SiteName}}</p>
</body>
</html>
`

const expiredTextTemplate = `Hello {{.BuyerName}},

The boost for your listing "{{.Title}}" expired on {{.ExpiryDate}}.
Your listing is still published but no longer promoted. You can purchase a new boost at any time.

{{.SiteName}}
`
