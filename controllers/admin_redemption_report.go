package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/retailkart/promokart/utils"
)

// Admin: Download redemption report as Excel
func DownloadRedemptionReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadRedemptionReportExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating Excel report for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	redeemed, err := entitlementRepo.ListRedeemed(c.Request.Context(), startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch redemptions: %v", err)
		utils.InternalServerError(c, "Failed to fetch redemptions", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d redemptions for Excel report", len(redeemed))

	// --- Calculate summary ---
	var summary struct {
		TotalRedemptions int
		TotalDiscount    float64
		TotalCustomers   int
		TotalStores      int
		AverageDiscount  float64
	}
	customerSet := make(map[uint]bool)
	storeSet := make(map[uint]bool)
	for _, ent := range redeemed {
		summary.TotalRedemptions++
		summary.TotalDiscount += ent.Redemption.AmountUsed
		customerSet[ent.CustomerID] = true
		storeSet[ent.Redemption.StoreID] = true
	}
	summary.TotalCustomers = len(customerSet)
	summary.TotalStores = len(storeSet)
	if summary.TotalRedemptions > 0 {
		summary.AverageDiscount = math.Round((summary.TotalDiscount/float64(summary.TotalRedemptions))*100) / 100
	}
	summary.TotalDiscount = math.Round(summary.TotalDiscount*100) / 100

	// --- Excel Generation ---
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Redemption Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}
	utils.LogDebug("Created Excel sheet for redemption report")

	// Company details
	companyRow := sheet.AddRow()
	companyRow.AddCell().SetString("RETAILKART - Redemption Report")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Email: support@retailkart.com")
	companyRow = sheet.AddRow()
	companyRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	// Table headers
	headers := []string{"Entitlement ID", "Coupon Code", "Campaign", "Customer ID", "Store ID", "Staff ID", "Purchase ID", "Redeemed At", "Amount Used"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	// Table rows
	for _, ent := range redeemed {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(ent.ID))
		row.AddCell().SetString(ent.UniqueCode)
		row.AddCell().SetString(ent.Campaign.Code)
		row.AddCell().SetInt(int(ent.CustomerID))
		row.AddCell().SetInt(int(ent.Redemption.StoreID))
		row.AddCell().SetInt(int(ent.Redemption.StaffID))
		row.AddCell().SetInt(int(ent.Redemption.PurchaseID))
		if ent.Redemption.RedeemedAt != nil {
			row.AddCell().SetString(ent.Redemption.RedeemedAt.Format("2006-01-02 15:04"))
		} else {
			row.AddCell().SetString("-")
		}
		row.AddCell().SetFloat(ent.Redemption.AmountUsed)
	}

	sheet.AddRow() // spacing

	// --- Summary Section ---
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Redemptions", fmt.Sprintf("%d", summary.TotalRedemptions)},
		{"Total Discount Given", fmt.Sprintf("%.2f", summary.TotalDiscount)},
		{"Unique Customers", fmt.Sprintf("%d", summary.TotalCustomers)},
		{"Stores Involved", fmt.Sprintf("%d", summary.TotalStores)},
		{"Avg. Discount", fmt.Sprintf("%.2f", summary.AverageDiscount)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=redemption_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to generate Excel file", err.Error())
		return
	}
	utils.LogInfo("Redemption report exported for period: %s", period)
}
