package seeders

var techniciansData = []struct {
	ID         uint64
	FullName   string
	HourlyRate float64
}{
	{ID: 1, FullName: "Каримов Фаррух", HourlyRate: 40},
	{ID: 2, FullName: "Саидов Бахтиёр", HourlyRate: 45},
	{ID: 3, FullName: "Назаров Джамшед", HourlyRate: 55},
}

var workOrdersData = []struct {
	ID          uint64
	Title       string
	VehicleID   *uint64
	EquipmentID *uint64
}{
	{ID: 1, Title: "ТО-1 автопогрузчика"},
	{ID: 2, Title: "Замена тормозных колодок"},
	{ID: 3, Title: "Диагностика гидравлики экскаватора"},
}
