package maintenance

// AllowTransition 定义维保任务状态机的允许流转关系。
// Completed / Cancelled 为终态；不允许原地流转（Cancelled -> Cancelled
// 若放行会导致二次回补库存）。
var AllowTransition = map[Status][]Status{
	StatusOngoing:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
