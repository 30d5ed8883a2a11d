package models

// All lists every model in dependency order for AutoMigrate
func All() []any {
	return []any{
		&UserModel{},
		&CustomerModel{},
		&ProductModel{},
		&ProductImageModel{},
		&InquiryModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderStatusChangeModel{},
		&NoteModel{},
		&CommunicationModel{},
		&NumberSequenceModel{},
	}
}
