package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"debtflow/internal/core"
	ports "debtflow/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports debts to a Google spreadsheet. Each debt occupies one row
// keyed by its ID in column A:
//
//	A=ID, B=Name, C=Type, D=Balance, E=Rate, F=Minimum, G=Frequency, H=Start, I=Version
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	debtsSheet    string
}

var _ ports.DebtExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
// Optional: GOOGLE_DEBTS_SHEET_NAME (default "Debts").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	debtsSheet := strings.TrimSpace(os.Getenv("GOOGLE_DEBTS_SHEET_NAME"))
	if debtsSheet == "" {
		debtsSheet = "Debts"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		debtsSheet:    debtsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "sheet", "debts")
	return service, nil
}

// AppendDebt writes the debt to its row, updating in place when the ID is
// already present.
func (c *Client) AppendDebt(ctx context.Context, d core.Debt, version int64) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := c.findRowByID(ctx, d.ID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		// No existing row: append after the last occupied one.
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.idColumnRange()).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("get sheet dimensions for %s: %w", c.debtsSheet, err)
		}
		row = len(resp.Values) + 1
	}

	rng := fmt.Sprintf("%s!A%d:I%d", c.debtsSheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		d.ID,
		d.Name,
		string(d.Type),
		d.Balance.Rupees(),
		d.InterestRate,
		d.MinimumPayment.Rupees(),
		string(d.Frequency),
		d.StartDate.Format("2006-01-02"),
		version,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.debtsSheet, err)
	}

	return rng, nil
}

// RemoveDebt clears the row holding the given debt ID.
func (c *Client) RemoveDebt(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRowByID(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.WarnContext(ctx, "Debt row not found in sheet, nothing to remove",
			"debt_id", id, "sheet", c.debtsSheet)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:I%d", c.debtsSheet, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row in sheet %s: %w", c.debtsSheet, err)
	}

	return nil
}

// findRowByID scans column A for the debt ID. Returns 0 when absent.
func (c *Client) findRowByID(ctx context.Context, id int64) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.idColumnRange()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", c.idColumnRange(), err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		rowID, ok := parseRowID(fmt.Sprint(row[0]))
		if !ok {
			continue
		}
		if rowID == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) idColumnRange() string {
	return fmt.Sprintf("%s!A:A", c.debtsSheet)
}

// parseRowID parses a cell value as a debt ID, tolerating header rows and
// number formatting the sheet may apply.
func parseRowID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Sheets may render integers as "3.0".
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		n := int64(f)
		if float64(n) == f && n > 0 {
			return n, true
		}
		return 0, false
	}
	return 0, false
}
