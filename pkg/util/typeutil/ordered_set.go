package typeutil

// OrderedSet 是保留插入顺序的集合，重复插入的元素会被忽略。
//
// 零值不可用，请使用 NewOrderedSet 创建。OrderedSet 不是并发安全的；
// 只读共享时（例如构造完成后不再修改）可以被多个协程同时访问。
type OrderedSet[T comparable] struct {
	index Set[T]
	items []T
}

func NewOrderedSet[T comparable](elements ...T) *OrderedSet[T] {
	set := &OrderedSet[T]{
		index: make(Set[T], len(elements)),
		items: make([]T, 0, len(elements)),
	}
	set.Insert(elements...)
	return set
}

// Insert 依次插入元素，已存在的元素保持原有位置。
func (set *OrderedSet[T]) Insert(elements ...T) {
	for _, elem := range elements {
		if set.index.Contain(elem) {
			continue
		}
		set.index.Insert(elem)
		set.items = append(set.items, elem)
	}
}

func (set *OrderedSet[T]) Contain(elements ...T) bool {
	return set.index.Contain(elements...)
}

func (set *OrderedSet[T]) Len() int {
	return len(set.items)
}

// Collect 按插入顺序返回元素副本。
func (set *OrderedSet[T]) Collect() []T {
	out := make([]T, len(set.items))
	copy(out, set.items)
	return out
}

// Range 按插入顺序遍历，回调返回 false 时提前终止。
func (set *OrderedSet[T]) Range(f func(element T) bool) {
	for _, elem := range set.items {
		if !f(elem) {
			return
		}
	}
}

// Equal 按集合语义比较，不考虑插入顺序。
func (set *OrderedSet[T]) Equal(other *OrderedSet[T]) bool {
	if set == nil || other == nil {
		return set == other
	}
	return set.index.Equal(other.index)
}

func (set *OrderedSet[T]) Clone() *OrderedSet[T] {
	return NewOrderedSet(set.items...)
}
