package models

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type VendorStats struct {
	TotalTickets  int          `json:"totalTickets"`
	TotalBookings int          `json:"totalBookings"`
	TotalRevenue  float64      `json:"totalRevenue"`
	ChartData     []ChartPoint `json:"chartData"`
}

type AdminStats struct {
	TotalUsers      int                        `json:"totalUsers"`
	TotalTickets    int                        `json:"totalTickets"`
	TicketsByStatus map[VerificationStatus]int `json:"ticketsByStatus"`
	UsersByRole     map[Role]int               `json:"usersByRole"`
	AdvertisedCount int                        `json:"advertisedCount"`
	AdvertiseLimit  int                        `json:"advertiseLimit"`
}

type MonthlySpend struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type UserStats struct {
	TotalBookings    int                   `json:"totalBookings"`
	TotalSpent       float64               `json:"totalSpent"`
	BookingsByStatus map[BookingStatus]int `json:"bookingsByStatus"`
	MonthlySpending  []MonthlySpend        `json:"monthlySpending"`
}
