package query

// Flatten выполняет один проход разворачивания вложенных групп:
// каждая группа WhereNested заменяется собственными условиями группы.
// Группы, вложенные глубже, остаются вложенными до следующего прохода.
func Flatten(wheres []Where) []Where {
	out := make([]Where, 0, len(wheres))

	for _, w := range wheres {
		if w.Kind != WhereNested {
			out = append(out, w)
			continue
		}

		// Пустая группа не дает ни условий, ни значений
		if w.Query == nil {
			continue
		}

		out = append(out, w.Query.Wheres...)
	}

	return out
}

// FlattenAll повторяет Flatten, пока в списке остаются вложенные группы.
// Каждый проход снимает ровно один уровень вложенности.
func FlattenAll(wheres []Where) []Where {
	for hasNested(wheres) {
		wheres = Flatten(wheres)
	}
	return wheres
}

func hasNested(wheres []Where) bool {
	for _, w := range wheres {
		if w.Kind == WhereNested {
			return true
		}
	}
	return false
}
