package audit

import (
	"github.com/anacreonhq/anacreon-backend/pkg/db/models"
	"github.com/anacreonhq/anacreon-backend/pkg/types"
)

// Detail builders shape the JSON payload stored alongside each audit row.
// Monetary values are serialized as strings so the payload survives JSON
// round-trips without float drift.

// StockDetails captures the snapshot values of a stock record. The item name
// is passed in because the snapshot row only holds the item id.
func StockDetails(stock *models.Stock, itemName string) types.JSONMap {
	return types.JSONMap{
		"item":          itemName,
		"quantity":      stock.Quantity,
		"cost_price":    stock.CostPrice.String(),
		"selling_price": stock.SellingPrice.String(),
	}
}

// OrderDetails captures the order status, total, lines, and customer. Lines
// carry the item name when the association is loaded, the item id otherwise.
func OrderDetails(order *models.Order) types.JSONMap {
	items := make([]map[string]any, 0, len(order.Items))
	for _, line := range order.Items {
		name := line.ItemID.String()
		if line.Item != nil {
			name = line.Item.Name
		}
		items = append(items, map[string]any{
			"item":          name,
			"quantity":      line.Quantity,
			"selling_price": line.SellingPrice.String(),
		})
	}
	details := types.JSONMap{
		"status": string(order.Status),
		"total":  order.Total.String(),
		"items":  items,
	}
	if order.CustomerID != nil {
		details["customer"] = order.CustomerID.String()
	} else {
		details["customer"] = nil
	}
	return details
}

// ExpenditureDetails captures the amount, category, and description.
func ExpenditureDetails(exp *models.Expenditure) types.JSONMap {
	return types.JSONMap{
		"amount":      exp.Amount.String(),
		"category":    exp.Category,
		"description": exp.Description,
	}
}

// ItemDetails captures the mutable catalog fields of an item.
func ItemDetails(item *models.Item) types.JSONMap {
	return types.JSONMap{
		"name":               item.Name,
		"sku":                item.SKU,
		"quantity":           item.Quantity,
		"cost_price":         item.CostPrice.String(),
		"last_selling_price": item.LastSellingPrice.String(),
	}
}
