package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

const OrdersSheet = "Orders"

var orderColumns = []string{
	"Order ID", "Date", "Customer", "Email", "Status", "Items",
	"Subtotal", "Tax", "Delivery Fee", "Total", "Address", "Phone", "Payment Method",
}

func itemsSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := it.Name
		if it.Variety != "" {
			name += " (" + it.Variety + ")"
		}
		parts = append(parts, fmt.Sprintf("%s x%d", name, it.Quantity))
	}
	return strings.Join(parts, "; ")
}

// WriteOrders renders orders as an .xlsx workbook with one row per order.
func WriteOrders(w io.Writer, orders []models.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, col := range orderColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(OrdersSheet, cell, col); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(orderColumns), 1)
	if err := f.SetCellStyle(OrdersSheet, "A1", last, header); err != nil {
		return err
	}

	for r, o := range orders {
		row := []any{
			o.ID,
			o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			o.CustomerName,
			o.CustomerEmail,
			o.Status,
			itemsSummary(o.Items),
			o.Subtotal,
			o.Tax,
			o.DeliveryFee,
			o.TotalAmount,
			o.Address,
			o.Phone,
			o.PaymentMethod,
		}
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(OrdersSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(OrdersSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(OrdersSheet, "F", "F", 48); err != nil {
		return err
	}
	return f.Write(w)
}
