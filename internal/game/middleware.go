// middleware.go

package game

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter 请求频率限制器(按客户端IP的滑动窗口)
// 只作用于HTTP端点；WebSocket意图的节流由射速闸门等
// 游戏规则自身承担
type RateLimiter struct {
	clients           map[string]*clientInfo
	mutex             sync.Mutex
	requestsPerMinute int
}

// clientInfo 单个客户端的请求记录
type clientInfo struct {
	requests []time.Time
	lastSeen time.Time
}

// NewRateLimiter 创建新的频率限制器
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients:           make(map[string]*clientInfo),
		requestsPerMinute: requestsPerMinute,
	}

	// 启动清理协程
	go rl.cleanup()

	return rl
}

// Middleware 频率限制中间件
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allowRequest(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"code":    "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowRequest 检查是否允许请求
func (rl *RateLimiter) allowRequest(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	client, exists := rl.clients[ip]
	if !exists {
		client = &clientInfo{}
		rl.clients[ip] = client
	}
	client.lastSeen = now

	// 丢弃窗口外的请求记录
	cutoff := now.Add(-time.Minute)
	valid := client.requests[:0]
	for _, t := range client.requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	client.requests = valid

	if len(client.requests) >= rl.requestsPerMinute {
		return false
	}

	client.requests = append(client.requests, now)
	return true
}

// cleanup 清理长时间未访问的客户端
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, client := range rl.clients {
			if client.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mutex.Unlock()
	}
}

// clientIP 获取客户端IP
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// CORSMiddleware CORS中间件
// 允许所有来源，游戏客户端从任意页面连入
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// 处理预检请求
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		log.Printf("%s %s %d %v", r.Method, r.URL.Path, recorder.statusCode, time.Since(start))
	})
}

// responseRecorder 响应记录器
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader 记录状态码
func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}
