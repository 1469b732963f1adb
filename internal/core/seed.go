package core

// DefaultCategories is the category set a fresh store starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Alimentação", Icon: "Utensils", Color: "bg-orange-100 text-orange-600", Kind: KindExpense},
		{ID: "2", Name: "Transporte", Icon: "Car", Color: "bg-blue-100 text-blue-600", Kind: KindExpense},
		{ID: "3", Name: "Lazer", Icon: "Coffee", Color: "bg-purple-100 text-purple-600", Kind: KindExpense},
		{ID: "4", Name: "Compras", Icon: "ShoppingBag", Color: "bg-pink-100 text-pink-600", Kind: KindExpense},
		{ID: "5", Name: "Saúde", Icon: "Heart", Color: "bg-red-100 text-red-600", Kind: KindExpense},
		{ID: "6", Name: "Moradia", Icon: "Home", Color: "bg-indigo-100 text-indigo-600", Kind: KindExpense},
		{ID: "7", Name: "Serviços", Icon: "Zap", Color: "bg-yellow-100 text-yellow-600", Kind: KindExpense},
		{ID: "8", Name: DefaultReserveCategory, Icon: "AlertCircle", Color: "bg-emerald-100 text-emerald-600", Kind: KindExpense},
		{ID: "9", Name: "Salário", Icon: "Wallet", Color: "bg-emerald-100 text-emerald-600", Kind: KindIncome},
		{ID: "10", Name: "Comissão", Icon: "TrendingUp", Color: "bg-cyan-100 text-cyan-600", Kind: KindIncome},
		{ID: "11", Name: "Renda Extra", Icon: "Smartphone", Color: "bg-teal-100 text-teal-600", Kind: KindIncome},
	}
}

// DefaultProfile is returned until a profile has been saved.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:               "Usuário",
		MonthlyIncomeLimit: Money{Cents: 500000},
	}
}
