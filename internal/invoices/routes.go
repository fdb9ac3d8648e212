package invoices

// Dashboard routes whose cached renderings depend on invoice data.
const (
	DashboardPath = "/dashboard"
	ListPath      = "/dashboard/invoices"
)

func EditPath(id string) string { return ListPath + "/" + id + "/edit" }
