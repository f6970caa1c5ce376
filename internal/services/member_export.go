package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/pkg/dates"

	"github.com/360EntSecGroup-Skylar/excelize"
)

// CSV import is header-driven: columns may appear in any order, matched by
// lower-cased, space-stripped header name. Unknown columns are ignored so
// staff can import spreadsheets with extra bookkeeping columns, but the core
// member columns must all be present or the import is refused up front.

var importRequiredColumns = []string{
	"gymnumber", "name", "status", "membershiptype", "details",
	"hascoach", "coachname", "trainingtype",
}

// ImportRowError records why one CSV row was rejected.
type ImportRowError struct {
	Row    int    `json:"row"` // 1-based, counting the header as row 1
	Reason string `json:"reason"`
}

// ImportResult summarizes a partial-success import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}

// ImportMembersCSV reads members from CSV and enrolls each valid row. Rows
// fail independently: a bad date in row 7 does not stop row 8.
func (s *memberService) ImportMembersCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing CSV header: %v", ErrValidation, err)
	}
	cols := map[string]int{}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "")
		key = strings.ReplaceAll(key, "_", "")
		cols[key] = i
	}
	missing := []string{}
	for _, key := range importRequiredColumns {
		if _, ok := cols[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: CSV is missing required columns: %s", ErrValidation, strings.Join(missing, ", "))
	}

	field := func(record []string, key string) string {
		i, ok := cols[key]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	rowNum := 1
	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		m, reason := s.memberFromRecord(field, record)
		if reason != "" {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Reason: reason})
			continue
		}
		if err := s.importMember(m); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

// memberFromRecord builds an unsaved member from one CSV row. A non-empty
// reason means the row is rejected.
func (s *memberService) memberFromRecord(field func([]string, string) string, record []string) (*models.Member, string) {
	name := field(record, "name")
	if name == "" {
		return nil, "name is required"
	}

	m := &models.Member{
		Name:           name,
		GymNumber:      field(record, "gymnumber"),
		MembershipType: field(record, "membershiptype"),
		Status:         field(record, "status"),
	}
	if m.MembershipType == "" {
		m.MembershipType = "Monthly"
	}
	switch m.Status {
	case "":
		m.Status = models.StatusActive
	case models.StatusActive, models.StatusInactive, models.StatusFrozen, models.StatusDue, models.StatusSessions:
	default:
		return nil, fmt.Sprintf("unknown status %q", m.Status)
	}

	setOpt := func(dst **string, key string) {
		if v := field(record, key); v != "" {
			*dst = &v
		}
	}
	setOpt(&m.Phone, "phone")
	setOpt(&m.Email, "email")
	setOpt(&m.Details, "details")
	setOpt(&m.CoachName, "coachname")
	setOpt(&m.TrainingType, "trainingtype")

	if v := field(record, "hascoach"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Sprintf("hascoach: %q is not a boolean", v)
		}
		m.HasCoach = b
	}
	for _, c := range []struct {
		key string
		dst **string
	}{
		{"subscriptionstartdate", &m.SubscriptionStartDate},
		{"duedate", &m.DueDate},
		{"sessionexpirydate", &m.SessionExpiryDate},
		{"lockerstartdate", &m.LockerStartDate},
		{"lockerduedate", &m.LockerDueDate},
		{"membershipfeelastpaid", &m.MembershipFeeLastPaid},
		{"membershipfeeduedate", &m.MembershipFeeDueDate},
	} {
		v := field(record, c.key)
		if v == "" {
			continue
		}
		t, err := dates.Parse(v)
		if err != nil {
			return nil, fmt.Sprintf("%s: %v", c.key, err)
		}
		formatted := dates.Format(t)
		*c.dst = &formatted
	}
	for _, c := range []struct {
		key string
		dst *int
	}{
		{"totalsessions", &m.TotalSessions},
		{"sessionsused", &m.SessionsUsed},
	} {
		v := field(record, c.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Sprintf("%s: %q is not a non-negative integer", c.key, v)
		}
		*c.dst = n
	}
	if m.SessionsUsed > m.TotalSessions {
		return nil, "sessionsused cannot exceed totalsessions"
	}
	return m, ""
}

// importMember persists one imported member, assigning a gym number when the
// sheet did not carry one.
func (s *memberService) importMember(m *models.Member) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if m.GymNumber == "" {
		seq, err := s.memberRepo.NextGymSequence(tx)
		if err != nil {
			return fmt.Errorf("failed to compute next gym number: %w", err)
		}
		m.GymNumber = fmt.Sprintf("G-%04d", seq)
	}
	if _, err := s.memberRepo.Create(tx, m); err != nil {
		return err
	}
	entry := &models.HistoryEntry{
		Type:  models.HistoryTypeEnrollment,
		Title: "Imported from CSV",
	}
	if _, err := s.memberRepo.AddHistory(tx, m.ID, entry); err != nil {
		return fmt.Errorf("failed to record import history: %w", err)
	}
	return tx.Commit()
}

var exportHeader = []string{
	"gym_number", "name", "phone", "email", "membership_type", "status",
	"subscription_start_date", "due_date", "has_coach", "coach_name",
	"training_type", "total_sessions", "sessions_used", "session_expiry_date",
	"locker_start_date", "locker_due_date", "membership_fee_last_paid",
	"membership_fee_due_date", "details",
}

func exportRow(m *models.Member) []string {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return []string{
		m.GymNumber, m.Name, str(m.Phone), str(m.Email), m.MembershipType, m.Status,
		str(m.SubscriptionStartDate), str(m.DueDate), strconv.FormatBool(m.HasCoach), str(m.CoachName),
		str(m.TrainingType), strconv.Itoa(m.TotalSessions), strconv.Itoa(m.SessionsUsed), str(m.SessionExpiryDate),
		str(m.LockerStartDate), str(m.LockerDueDate), str(m.MembershipFeeLastPaid),
		str(m.MembershipFeeDueDate), str(m.Details),
	}
}

// ExportMembersCSV writes the filtered member list as CSV.
func (s *memberService) ExportMembersCSV(w io.Writer, filters models.MemberFilters) error {
	filters.Page = 0
	filters.PageSize = 0 // no pagination on exports
	members, _, err := s.memberRepo.List(filters)
	if err != nil {
		return fmt.Errorf("failed to list members for export: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range members {
		if err := writer.Write(exportRow(&members[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportMembersExcel builds a one-sheet workbook of the filtered member list.
func (s *memberService) ExportMembersExcel(filters models.MemberFilters) (*excelize.File, error) {
	filters.Page = 0
	filters.PageSize = 0
	members, _, err := s.memberRepo.List(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list members for export: %w", err)
	}

	file := excelize.NewFile()
	sheet := "Members"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell := fmt.Sprintf("%s1", excelize.ToAlphaString(col))
		file.SetCellValue(sheet, cell, title)
	}
	for i := range members {
		row := exportRow(&members[i])
		for col, value := range row {
			cell := fmt.Sprintf("%s%d", excelize.ToAlphaString(col), i+2)
			file.SetCellValue(sheet, cell, value)
		}
	}
	return file, nil
}
