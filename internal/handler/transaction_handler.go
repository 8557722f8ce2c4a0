package handler

import (
	"strconv"
	"strings"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	reportService service.ReportService
	userRepo      repository.UserRepository
}

func NewTransactionHandler(reportService service.ReportService, userRepo repository.UserRepository) *TransactionHandler {
	return &TransactionHandler{
		reportService: reportService,
		userRepo:      userRepo,
	}
}

// parseFilter builds the audit log filter from query params. Dates are
// YYYY-MM-DD with optional HH:MM times; list params are comma-separated.
func parseFilter(c *fiber.Ctx) (report.Filter, error) {
	var f report.Filter

	from, err := parseDateTime(c.Query("start_date"), c.Query("start_time"), false)
	if err != nil {
		return f, err
	}
	to, err := parseDateTime(c.Query("end_date"), c.Query("end_time"), true)
	if err != nil {
		return f, err
	}
	f.From = from
	f.To = to

	if types := c.Query("types"); types != "" {
		for _, raw := range strings.Split(types, ",") {
			t := model.EntryType(strings.ToUpper(strings.TrimSpace(raw)))
			if !model.ValidEntryType(t) {
				return f, fiber.NewError(400, "Unknown entry type: "+string(t))
			}
			f.Types = append(f.Types, t)
		}
	}
	if employees := c.Query("employees"); employees != "" {
		for _, name := range strings.Split(employees, ",") {
			if name = strings.TrimSpace(name); name != "" {
				f.Employees = append(f.Employees, name)
			}
		}
	}
	f.Brand = c.Query("brand")
	f.Product = c.Query("product")

	return f, nil
}

func parseDateTime(dateStr, timeStr string, endOfDay bool) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fiber.NewError(400, "Invalid date, use YYYY-MM-DD")
	}
	if timeStr != "" {
		clock, err := time.Parse("15:04", timeStr)
		if err != nil {
			return time.Time{}, fiber.NewError(400, "Invalid time, use HH:MM")
		}
		return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

// GetTransactions returns the filtered audit log, newest first.
// GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	entries, err := h.reportService.GetEntries(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(entries)
}

// GetHistory returns the filtered audit log bucketed per calendar day.
// GET /api/v1/transactions/history
func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	groups, err := h.reportService.GetHistory(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(groups)
}

// GetTransaction returns one audit entry by ID.
// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	entry, err := h.reportService.GetEntryByID(entryID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.JSON(entry)
}

// GetDailyReport renders the plain-text sales recap for one day.
// GET /api/v1/reports/daily?date=YYYY-MM-DD (default today)
func (h *TransactionHandler) GetDailyReport(c *fiber.Ctx) error {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
		}
		day = parsed
	}

	text, err := h.reportService.GetDailySalesReport(day)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(text)
}

// GetBrandSummary returns per-brand stock and period sales totals.
// GET /api/v1/reports/brands?start_date=&end_date=
func (h *TransactionHandler) GetBrandSummary(c *fiber.Ctx) error {
	from, err := parseDateTime(c.Query("start_date"), "", false)
	if err != nil {
		return err
	}
	to, err := parseDateTime(c.Query("end_date"), "", true)
	if err != nil {
		return err
	}

	summary, err := h.reportService.GetBrandSummary(from, to)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(summary)
}

// PurgeRequest carries the caller's password; the purge is irreversible so
// the current session alone is not enough.
type PurgeRequest struct {
	Password string `json:"password"`
}

// PurgeTransactions hard-deletes audit entries older than the given number of
// days, after re-confirming the caller's password.
// DELETE /api/v1/transactions/older-than/:days
func (h *TransactionHandler) PurgeTransactions(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Params("days"))
	if err != nil || days <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Day count must be a positive integer"})
	}

	var req PurgeRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Password confirmation is required"})
	}

	userID, err := uuid.Parse(getActor(c).ID)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	user, err := h.userRepo.FindByID(userID)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !user.CheckPassword(req.Password) {
		return c.Status(403).JSON(fiber.Map{"error": "Password confirmation failed"})
	}

	removed, err := h.reportService.PurgeOlderThan(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to purge transactions"})
	}

	return c.JSON(fiber.Map{
		"message": "Transactions purged",
		"removed": removed,
	})
}
