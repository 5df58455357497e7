package snowflake

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// 10 位节点号拆成 5 位数据中心 + 5 位机器
const maxPart = 1<<5 - 1

var (
	ErrNotInitialized = errors.New("snowflake: generator not initialized")

	node atomic.Pointer[snowflake.Node]
)

// Init 只有第一次成功的调用生效，server 与 worker 应使用不同的 machineID
func Init(machineID, dataCenterID int64) error {
	if node.Load() != nil {
		return nil
	}
	if machineID < 0 || machineID > maxPart || dataCenterID < 0 || dataCenterID > maxPart {
		return fmt.Errorf("snowflake: machine %d / datacenter %d out of range 0-%d", machineID, dataCenterID, maxPart)
	}

	n, err := snowflake.NewNode(dataCenterID<<5 | machineID)
	if err != nil {
		return fmt.Errorf("snowflake: %w", err)
	}
	node.CompareAndSwap(nil, n)
	return nil
}

func NextID() (int64, error) {
	n := node.Load()
	if n == nil {
		return 0, ErrNotInitialized
	}
	return n.Generate().Int64(), nil
}
