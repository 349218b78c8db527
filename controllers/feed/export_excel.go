package feedControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/feed"
	"github.com/tealeg/xlsx"
)

const timeLayout = "2006-01-02 15:04:05"

// GET /admin/feed/export-excel
//
// Writes the buffered orders, sales points and unread notifications as an
// xlsx workbook.
func ExportExcel(dash Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := feedWorkbook(dash.Snapshot())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=feed-"+time.Now().Format("20060102-150405")+".xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		}
	}
}

func feedWorkbook(snap feed.Snapshot) (*xlsx.File, error) {
	file := xlsx.NewFile()

	orders, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}
	header(orders, "Time", "Order", "Customer", "Items", "Total", "Status")
	for _, e := range snap.Recent[feed.CategoryOrders] {
		o, ok := e.Payload.(feed.OrderEvent)
		if !ok {
			continue
		}
		row := orders.AddRow()
		row.AddCell().SetValue(e.Timestamp.Format(timeLayout))
		row.AddCell().SetValue(o.OrderNumber)
		row.AddCell().SetValue(o.Customer)
		row.AddCell().SetValue(o.Items)
		row.AddCell().SetValue(o.Total.StringFixed(2))
		row.AddCell().SetValue(o.Status)
	}

	sales, err := file.AddSheet("Sales")
	if err != nil {
		return nil, err
	}
	header(sales, "Time", "Revenue", "Orders")
	for _, e := range snap.Recent[feed.CategorySales] {
		p, ok := e.Payload.(feed.SalesPoint)
		if !ok {
			continue
		}
		row := sales.AddRow()
		row.AddCell().SetValue(p.Time.Format(timeLayout))
		row.AddCell().SetValue(p.Revenue.StringFixed(2))
		row.AddCell().SetValue(p.Orders)
	}

	notes, err := file.AddSheet("Notifications")
	if err != nil {
		return nil, err
	}
	header(notes, "Time", "Priority", "Source", "Title", "Message")
	for _, n := range snap.Unread {
		row := notes.AddRow()
		row.AddCell().SetValue(n.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(string(n.Priority))
		row.AddCell().SetValue(string(n.Source))
		row.AddCell().SetValue(n.Title)
		row.AddCell().SetValue(n.Message)
	}

	return file, nil
}

func header(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, h := range cols {
		row.AddCell().SetValue(h)
	}
}
