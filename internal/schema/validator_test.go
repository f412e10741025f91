package schema

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestValidate_ReportsVectorDimensionMismatch(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()
	v := NewValidator(db)

	rows := sqlmock.NewRows([]string{"attname", "format_type"}).
		AddRow("repo", "text").
		AddRow("pr", "integer").
		AddRow("filepath", "text").
		AddRow("comment", "text").
		AddRow("diff", "text").
		AddRow("concerns", "jsonb").
		AddRow("arch_summary", "text").
		AddRow("evidence", "text").
		AddRow("embedding", "vector(1536)")
	mock.ExpectQuery("pg_attribute").WillReturnRows(rows)

	// Act
	mismatches, err := v.Validate(768)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mismatches) != 1 {
		t.Fatalf("expected exactly one mismatch, got %+v", mismatches)
	}
	if mismatches[0].Column != "embedding" || mismatches[0].Expected != "vector(768)" || mismatches[0].Actual != "vector(1536)" {
		t.Errorf("unexpected mismatch: %+v", mismatches[0])
	}
}

func TestValidate_ReportsMissingColumn(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()
	v := NewValidator(db)

	rows := sqlmock.NewRows([]string{"attname", "format_type"}).
		AddRow("repo", "text")
	mock.ExpectQuery("pg_attribute").WillReturnRows(rows)

	// Act
	mismatches, err := v.Validate(768)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, mm := range mismatches {
		if mm.Column == "embedding" && mm.Actual == "" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing-column mismatch for embedding, got %+v", mismatches)
	}
}

func TestValidate_NoMismatchesWhenSchemaMatches(t *testing.T) {
	// Arrange
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()
	v := NewValidator(db)

	rows := sqlmock.NewRows([]string{"attname", "format_type"})
	for _, c := range Expected(768) {
		rows.AddRow(c.Name, c.Type)
	}
	mock.ExpectQuery("pg_attribute").WillReturnRows(rows)

	// Act
	mismatches, err := v.Validate(768)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mismatches) != 0 {
		t.Errorf("expected no mismatches, got %+v", mismatches)
	}
}
