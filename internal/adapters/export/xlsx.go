package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

// SheetName は出力するシート名です。
const SheetName = "Employees"

var header = []any{
	"Name", "Email", "Phone", "Title", "Department", "Salary", "Admission Date", "Status",
	"Birth Date", "Marital Status", "Gender", "City", "State", "Notes",
}

// ExportXLSX は社員一覧を 1 シートのスプレッドシートとして w に書き出します。
func ExportXLSX(list []*employee.Employee, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for i, e := range list {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		row := []any{
			e.Name,
			e.Email,
			e.Phone,
			e.Title,
			e.Department,
			e.Salary,
			e.AdmissionDate.Format(employee.DateLayout),
			string(e.Status),
			e.BirthDate.Format(employee.DateLayout),
			string(e.MaritalStatus),
			string(e.Gender),
			e.Address.City,
			e.Address.State,
			notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("export: freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
