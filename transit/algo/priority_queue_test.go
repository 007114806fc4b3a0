package algo_test

import (
	"container/heap"
	"testing"

	"github.com/markleyboyer/subway-equidistance/transit/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func popAll(pq *algo.PriorityQueue) []int {
	ret := make([]int, 0, pq.Len())
	for pq.Len() > 0 {
		ret = append(ret, heap.Pop(pq).(*algo.Item).Value)
	}
	return ret
}

func TestPriorityQueueOrder(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	for v, p := range []float64{12.5, 3, 40, 0, 7.25} {
		heap.Push(&pq, &algo.Item{Value: v, Priority: p})
	}
	require.Equal(t, 5, pq.Len())
	assert.Equal(t, []int{3, 1, 4, 0, 2}, popAll(&pq))
}

// 松弛时降低已在堆中节点的优先级
func TestPriorityQueueDecreaseKey(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	items := make([]*algo.Item, 4)
	for i := range items {
		items[i] = &algo.Item{Value: i, Priority: float64(10 * (i + 1))}
		heap.Push(&pq, items[i])
	}
	items[3].Priority = 5
	heap.Fix(&pq, items[3].Index)
	items[1].Priority = 10
	heap.Fix(&pq, items[1].Index)

	top := heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 3, top.Value)
	assert.Equal(t, 5.0, top.Priority)
	// 0与1优先级相同，下标小的先出
	assert.Equal(t, []int{0, 1, 2}, popAll(&pq))
	assert.Equal(t, 0, pq.Len())
}

func TestPriorityQueueTieBreak(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	for _, v := range []int{7, 3, 9, 1, 5} {
		heap.Push(&pq, &algo.Item{Value: v, Priority: 2.5})
	}
	// 优先级相同，按Value升序
	assert.Equal(t, []int{1, 3, 5, 7, 9}, popAll(&pq))
}
