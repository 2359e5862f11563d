package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

var requiredColumns = []string{"Complaint_ID", "Message", "Supplier", "Product"}

// ReadComplaintsFile loads one uploaded batch. A batch whose header lacks any
// required column fails with a StructuralError before anything is processed.
func ReadComplaintsFile(path string) ([]ComplaintRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open complaints file: %w", err)
	}
	defer f.Close()
	return ParseComplaints(f)
}

// ParseComplaints reads complaint records from CSV. Extra columns are
// ignored; Order_ID is optional.
func ParseComplaints(r io.Reader) ([]ComplaintRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &StructuralError{Missing: requiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("read complaints header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &StructuralError{Missing: missing}
	}

	field := func(row []string, name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []ComplaintRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read complaints row: %w", err)
		}
		records = append(records, ComplaintRecord{
			ComplaintID: field(row, "Complaint_ID"),
			Message:     field(row, "Message"),
			Supplier:    field(row, "Supplier"),
			Product:     field(row, "Product"),
			OrderID:     field(row, "Order_ID"),
		})
	}
	return records, nil
}
