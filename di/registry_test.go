package di

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("db", func() int { return 1 }); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := r.Register("db", func() int { return 2 })
	var dup DuplicateRegistrationError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateRegistrationError, got %v", err)
	}
	if dup.Name != "db" {
		t.Errorf("expected name 'db', got %q", dup.Name)
	}

	// 重复注册不能覆盖原有条目
	val, err := r.Resolve("db")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if val.(int) != 1 {
		t.Errorf("expected original provider to survive, got %v", val)
	}
}

func TestUnregisterUnknown(t *testing.T) {
	r := NewRegistry()

	err := r.Unregister("ghost")
	var unknown UnknownDependencyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownDependencyError, got %v", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()

	// 未注册的名称必须报错，绝不返回默认值
	val, err := r.Resolve("missing")
	var unknown UnknownDependencyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownDependencyError, got %v", err)
	}
	if unknown.Name != "missing" {
		t.Errorf("expected name 'missing', got %q", unknown.Name)
	}
	if val != nil {
		t.Errorf("expected nil value on error, got %v", val)
	}
}

func TestSingletonResolvesOnce(t *testing.T) {
	r := NewRegistry()

	count := 0
	err := r.Register("conn", func() *int {
		count++
		v := count
		return &v
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := r.Resolve("conn")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	second, err := r.Resolve("conn")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	if first != second {
		t.Error("singleton resolutions returned different values")
	}
	if count != 1 {
		t.Errorf("expected factory invoked exactly once, got %d", count)
	}
}

func TestFactoryModeCreatesFresh(t *testing.T) {
	r := NewRegistry()

	count := 0
	err := r.Register("id", func() *int {
		count++
		v := count
		return &v
	}, WithFactory())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, _ := r.Resolve("id")
	second, _ := r.Resolve("id")

	if first == second {
		t.Error("factory resolutions returned the same value")
	}
	if count != 2 {
		t.Errorf("expected factory invoked twice, got %d", count)
	}
}

func TestSingletonFailureDoesNotPoison(t *testing.T) {
	r := NewRegistry()

	attempts := 0
	err := r.Register("flaky", func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", fmt.Errorf("transient failure")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := r.Resolve("flaky"); err == nil {
		t.Fatal("expected first Resolve to fail")
	}

	// 失败不缓存：第二次解析重试工厂并成功
	val, err := r.Resolve("flaky")
	if err != nil {
		t.Fatalf("retry Resolve failed: %v", err)
	}
	if val.(string) != "ok" {
		t.Errorf("expected 'ok', got %v", val)
	}

	// 成功后记忆化，不再重试
	if _, err := r.Resolve("flaky"); err != nil {
		t.Fatalf("memoized Resolve failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 factory attempts, got %d", attempts)
	}
}

func TestDistinctNamesAreIsolated(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("b", 42); err != nil {
		t.Fatalf("Register b failed: %v", err)
	}

	before, err := r.Resolve("b")
	if err != nil {
		t.Fatalf("Resolve b failed: %v", err)
	}

	// 注册 a 不影响 b 的解析
	if err := r.Register("a", "hello"); err != nil {
		t.Fatalf("Register a failed: %v", err)
	}

	after, err := r.Resolve("b")
	if err != nil {
		t.Fatalf("Resolve b after registering a failed: %v", err)
	}
	if before != after {
		t.Error("registering a distinct name changed an unrelated resolution")
	}
}

func TestFactoryModeRequiresFunction(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("cfg", 42, WithFactory()); err == nil {
		t.Fatal("expected error registering non-function in factory mode")
	}
}

func TestUnregisterThenReregister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("svc", func() int { return 1 }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	mode, err := r.Mode("svc")
	if err != nil || mode != ModeSingleton {
		t.Fatalf("expected singleton mode, got %v (%v)", mode, err)
	}

	if err := r.Unregister("svc"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	// 注销后可以换模式重新注册
	if err := r.Register("svc", func() int { return 2 }, WithFactory()); err != nil {
		t.Fatalf("re-Register failed: %v", err)
	}
	mode, _ = r.Mode("svc")
	if mode != ModeFactory {
		t.Errorf("expected factory mode after re-registration, got %v", mode)
	}
}

func TestConcurrentSingletonResolvesOnce(t *testing.T) {
	r := NewRegistry()

	var mu sync.Mutex
	count := 0
	err := r.Register("shared", func() *struct{} {
		mu.Lock()
		count++
		mu.Unlock()
		return &struct{}{}
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	const goroutines = 32
	results := make([]any, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			val, err := r.Resolve("shared")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			results[idx] = val
		}(i)
	}
	wg.Wait()

	if count != 1 {
		t.Errorf("expected factory invoked once under concurrency, got %d", count)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d observed a different singleton instance", i)
		}
	}
}

func TestResolveGenericWrongType(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("port", "8080"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := Resolve[int](r, "port")
	var wrong WrongTypeError
	if !errors.As(err, &wrong) {
		t.Fatalf("expected WrongTypeError, got %v", err)
	}
	if wrong.GotType != "string" {
		t.Errorf("expected GotType 'string', got %q", wrong.GotType)
	}
}

func TestInvalidNames(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"", "1abc", "has space", "加", ":lead"} {
		err := r.Register(name, 1)
		var invalid InvalidNameError
		if !errors.As(err, &invalid) {
			t.Errorf("expected InvalidNameError for %q, got %v", name, err)
		}
	}

	// 命名空间分隔符是合法的
	for _, name := range []string{"db:default", "config:app.name", "redis-cache", "_hidden"} {
		if err := r.Register(name, 1); err != nil {
			t.Errorf("expected %q to be a valid name, got %v", name, err)
		}
	}
}

func TestNamesSnapshot(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("a", 1)
	_ = r.Register("b", 2)

	names := r.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if !r.Has("a") || !r.Has("b") {
		t.Error("Has should report registered names")
	}
	if r.Has("c") {
		t.Error("Has reported an unregistered name")
	}
}
