package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/saptarimadira/trader-backend/internal/orders"
)

var billTmpl = template.Must(template.New("bill").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #dc2626; color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; background: #f9f9f9; }
    table { width: 100%; border-collapse: collapse; margin: 20px 0; }
    th { background: #333; color: white; padding: 12px; text-align: left; }
    td { padding: 12px; border-bottom: 1px solid #ddd; }
    .total { font-size: 18px; font-weight: bold; text-align: right; margin-top: 20px; }
    .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>New Saptari Madira Trader</h1>
      <p>Order Confirmation</p>
    </div>
    <div class="content">
      <h2>Order Details</h2>
      <p><strong>Order ID:</strong> #{{.ID}}</p>
      <p><strong>Date:</strong> {{.CreatedAt.Format "02 January 2006 15:04"}}</p>

      <h3>Customer Information</h3>
      <p><strong>Name:</strong> {{.CustomerName}}</p>
      <p><strong>Phone:</strong> {{if .CustomerPhone}}{{.CustomerPhone}}{{else}}N/A{{end}}</p>
      <p><strong>Email:</strong> {{if .CustomerEmail}}{{.CustomerEmail}}{{else}}N/A{{end}}</p>
      {{if .CustomerAddress}}<p><strong>Address:</strong> {{.CustomerAddress}}</p>{{end}}

      <h3>Order Items</h3>
      <table>
        <thead>
          <tr><th>Product</th><th>Size</th><th>Cartons</th><th>Bottles</th><th>Price/Carton</th><th>Total</th></tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.ProductName}}</td>
            <td>{{if .BottleSize}}{{.BottleSize}}{{else}}N/A{{end}}</td>
            <td>{{.CartonQuantity}} cartons</td>
            <td>{{.Quantity}} bottles</td>
            <td>Rs. {{.UnitPrice}}</td>
            <td>Rs. {{.TotalPrice}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>

      <p class="total">Total Amount: Rs. {{.TotalAmount}}</p>

      {{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
    </div>
    <div class="footer">
      <p>Thank you for your business!</p>
      <p>New Saptari Madira Trader | Rajbiraj, Saptari</p>
    </div>
  </div>
</body>
</html>`))

// RenderBill produces the confirmation email for an order view.
func RenderBill(v orders.OrderView) (subject, html string, err error) {
	var b strings.Builder
	if err := billTmpl.Execute(&b, v); err != nil {
		return "", "", err
	}
	subject = fmt.Sprintf("Order Confirmation - #%d | New Saptari Madira Trader", v.ID)
	return subject, b.String(), nil
}
