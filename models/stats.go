package models

// DashboardStats, dashboard ana sayfasındaki özet kartlar.
// Buyer için tüm sayılar kendi mağazalarıyla sınırlıdır; Users alanı
// sadece admin için doldurulur.
type DashboardStats struct {
	Users         int     `json:"users,omitempty"`
	Products      int     `json:"products"`
	Stores        int     `json:"stores"`
	Orders        int     `json:"orders"`
	PendingOrders int     `json:"pending_orders"`
	LowStock      int     `json:"low_stock"`
	Revenue       int64   `json:"revenue"`
	RecentOrders  []Order `json:"recent_orders"`
}
