package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AddrSetter определяет интерфейс для установки адреса из строки.
type AddrSetter interface {
	Set(string) error
}

// EnvServer устанавливает адрес из переменной окружения envKey, если она задана.
//
// Возвращает ошибку, если значение некорректно, иначе nil.
func EnvServer(addr AddrSetter, envKey string) error {
	if envVal, ok := os.LookupEnv(envKey); ok && envVal != "" {
		if err := addr.Set(envVal); err != nil {
			return fmt.Errorf("invalid %s: %w", envKey, err)
		}
	}
	return nil
}

// EnvInt возвращает значение переменной окружения как int.
//
// Если переменная не задана или пуста, возвращает 0 и nil.
// Если значение не может быть преобразовано в int, возвращает ошибку.
func EnvInt(key string) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

// EnvString возвращает значение переменной окружения как строку.
//
// Если переменная не задана или пуста, возвращает пустую строку.
func EnvString(key string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return ""
}

// EnvBool возвращает значение переменной окружения как bool и флаг наличия.
func EnvBool(key string) (value bool, ok bool, err error) {
	val := EnvString(key)
	if val == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, true, nil
}

// EnvDuration возвращает значение переменной окружения как длительность.
//
// Принимает как формат "1s"/"500ms", так и целое число секунд.
// Если переменная не задана, возвращает 0 и nil.
func EnvDuration(key string) (time.Duration, error) {
	val := EnvString(key)
	if val == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// EnvList возвращает значение переменной окружения, разбитое по запятым.
func EnvList(key string) []string {
	return SplitList(EnvString(key))
}

// SplitList разбивает строку по запятым, отбрасывая пустые элементы.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
