package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"relogio-be/internal/models"
	"relogio-be/internal/utils"
)

// ExportProducts streams the catalog as an xlsx workbook.
func (s *server) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListProducts("")
	if err != nil {
		log.Printf("ExportProducts: error listing products: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load products for export")
		return
	}

	f := excelize.NewFile()
	sheetName := "Produtos"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID", "Nome", "Marca", "Categoria", "Preço", "Estoque", "Destaque", "Criado em"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, p := range products {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), p.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), p.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), p.Brand)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), models.ValidCategories[p.Category])
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), utils.FormatBRL(p.Price))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), p.Stock)
		if p.Featured {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), "Sim")
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), "Não")
		}
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), p.CreatedAt.Format("02.01.2006"))
		rowIndex++
	}

	streamWorkbook(w, f, fmt.Sprintf("produtos_%s.xlsx", time.Now().Format("20060102")))
}

// ExportOrders streams all orders as an xlsx workbook, one row per order.
func (s *server) ExportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Store.ListOrders()
	if err != nil {
		log.Printf("ExportOrders: error listing orders: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load orders for export")
		return
	}

	f := excelize.NewFile()
	sheetName := "Pedidos"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID Pedido", "Cliente", "Telefone", "Endereço", "Itens", "Total", "Status", "Data"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, o := range orders {
		itemCount := 0
		for _, item := range o.Items {
			itemCount += item.Quantity
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), o.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), o.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), o.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), o.Address)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), itemCount)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), utils.FormatBRL(o.Total))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), models.OrderStatusDisplayMap[o.Status])
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), o.CreatedAt.Format("02.01.2006 15:04"))
		rowIndex++
	}

	streamWorkbook(w, f, fmt.Sprintf("pedidos_%s.xlsx", time.Now().Format("20060102")))
}

func streamWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("streamWorkbook: error writing %s: %v", filename, err)
	}
}
