package assert

import (
	"fmt"
	"sync"
)

var (
	mu    sync.Mutex
	depth int
)

// NotCircular 防止单例构造过程中出现循环依赖导致的死锁
func NotCircular() {
	mu.Lock()
	defer mu.Unlock()
	depth++
	if depth > 1000 {
		panic("circular dependency detected during singleton assembly")
	}
}

// NotNil 断言对象非空
func NotNil(v interface{}) {
	if v == nil {
		panic(fmt.Sprintf("assert: unexpected nil value %v", v))
	}
}
