package model

// All returns every model owned by the backend, in migration order.
func All() []any {
	return []any{
		&PatientModel{},
		&DoctorModel{},
		&ServiceModel{},
		&AppointmentModel{},
		&ReportModel{},
		&SalaryModel{},
		&ProfitModel{},
		&ConsumptionModel{},
		&BalanceEntryModel{},
		&OutboxEventModel{},
		&NotificationJobModel{},
	}
}
