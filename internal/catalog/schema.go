package catalog

// SchemaVersion identifies the catalog markup these selectors were written against.
// Bump it together with the fixtures in testdata/ whenever the catalog changes.
const SchemaVersion = 1

// Query parameters understood by the catalog.
const (
	paramAction     = "do"
	paramOfferID    = "ztid"
	paramFaculty    = "fak"
	paramDepartment = "ustav"
	paramSubject    = "predmet"
	paramFutureOnly = "budouci"
	paramLimit      = "limit"

	actionDetail = "detail"
	actionSearch = "search"

	searchLimit = 500
)

// Detail page, summary table of key/value rows:
//
//	<table class="tab2">
//	  <tr><th>Date:</th><td>Jun 12, 2024 - Wednesday</td></tr>
//	  <tr><th>Time:</th><td>08:00</td></tr>
//	  ...
//	</table>
//
// The single-row variant leaves out Time and prints "12.06.2024 08:00" under Date.
const (
	summaryTable = "table.tab2"
	summaryRow   = "tr"
	summaryKey   = "th"
	summaryValue = "td"

	keyDate = "Date"
	keyTime = "Time"
)

// Detail page, subjects served by the exam date:
//
//	<table class="tab1">
//	  <tr class="head1"><th>Code</th><th>Subject</th></tr>
//	  <tr class="row1"><td><a href="...">NPRG030</a></td><td>Programming I</td></tr>
//	  <tr class="row2"><td><a href="...">NPRG031</a></td><td>Programming II</td></tr>
//	</table>
const (
	subjectTable      = "table.tab1"
	subjectRow        = "tr.row1, tr.row2"
	subjectCodeColumn = 0
	subjectNameColumn = 1
)

// Search results for future dates of one subject:
//
//	<div id="results">
//	  <table class="tab1">
//	    <tr class="head1">...</tr>
//	    <tr class="row1"><td>NPRG030</td><td>Programming I</td><td>20.06.2024</td><td>09:00</td><td>S5</td></tr>
//	  </table>
//	</div>
//
// A results container without rows means no future dates.
const (
	listingContainer  = "div#results"
	listingRow        = "table.tab1 tr.row1, table.tab1 tr.row2"
	listingDateColumn = 2
)
