package email

import (
	"bytes"
	"html/template"

	"github.com/storefront/backend/internal/domain/order"
)

const (
	subjectConfirmation = "Order Confirmation"
	subjectAdmin        = "New Order Notification"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h1>Thank you for your order, {{.CustomerName}}!</h1>
<p>Order ID: {{.ID}}</p>
<p>Status: {{.Status}}</p>
<h2>Items</h2>
<ul>
{{range .Items}}  <li>{{.Name}} x {{.Quantity}} - ${{.Price.StringFixed 2}}</li>
{{end}}</ul>
<p>Items: ${{.ItemsPrice.StringFixed 2}}</p>
<p>Shipping: ${{.ShippingPrice.StringFixed 2}}</p>
<p>Tax: ${{.TaxPrice.StringFixed 2}}</p>
<p><strong>Total: ${{.TotalPrice.StringFixed 2}}</strong></p>
<h2>Shipping address</h2>
<p>{{with .ShippingAddress}}{{.Street}}, {{.City}}, {{.State}} {{.ZipCode}}, {{.Country}}{{end}}</p>
`))

var adminTmpl = template.Must(template.New("admin").Parse(`<h1>New order received</h1>
<p>Order ID: {{.ID}}</p>
<p>Customer: {{.CustomerName}} &lt;{{.CustomerEmail}}&gt; {{.CustomerPhone}}</p>
<p>Payment method: {{.PaymentMethod}}</p>
<ul>
{{range .Items}}  <li>{{.Name}} x {{.Quantity}} - ${{.Price.StringFixed 2}}</li>
{{end}}</ul>
<p><strong>Total: ${{.TotalPrice.StringFixed 2}}</strong></p>
`))

func render(tmpl *template.Template, o *order.Order) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}
