package pipeline

// Media types and extensions accepted by DetectFileType.
const (
	mediaTypeCSV      = "text/csv"
	mediaTypeExcelCSV = "application/vnd.ms-excel"
	mediaTypePDF      = "application/pdf"

	extCSV = ".csv"
	extPDF = ".pdf"
)

// salaryMarker is the description fragment that makes a bank statement
// credit count as income.
const salaryMarker = "salary"
