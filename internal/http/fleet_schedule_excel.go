package httpapi

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"github.com/xuri/excelize/v2"
)

// fleetScheduleHeaders 导出表头（与后台前端表格列对齐）
var fleetScheduleHeaders = []string{
	"Server", "Server ID", "Config Type", "Config ID", "Live", "Offset (minutes)",
}

// buildFleetScheduleXLSX 把全量映射排期写成一张 xlsx 工作表
func buildFleetScheduleXLSX(rows []service.ServerScheduleRow) ([]byte, error) {
	f := excelize.NewFile()
	// 注意：WriteTo 需要文件处于打开状态，不能在这里 defer Close()

	const sheet = "MappingSchedule"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for col, h := range fleetScheduleHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header: %w", err)
		}
	}

	for i, row := range rows {
		offset := "base"
		if row.OffsetMinutes != nil {
			offset = strconv.Itoa(*row.OffsetMinutes)
		}
		values := []any{
			row.ServerName,
			row.ServerID,
			string(row.ConfigType),
			row.ConfigID,
			row.IsLive,
			offset,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	_ = f.Close()
	return buf.Bytes(), nil
}
