package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/attendance-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/attendance-clean-arch/internal/core/employee"
)

const shutdownTimeout = 10 * time.Second

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	httpServer *http.Server
}

// New は指定されたアドレスで待ち受ける HTTP サーバーを構築します。
func New(listenAddr string, employees employee.UseCase, attendanceSvc attendance.UseCase) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scanHandler := handler.NewScanHandler(attendanceSvc)
	employeeHandler := handler.NewEmployeeHandler(employees)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/scans", scanHandler.SubmitScan)

		v1.POST("/employees", employeeHandler.CreateEmployee)
		v1.GET("/employees", employeeHandler.ListEmployees)
		v1.GET("/employees/:id", employeeHandler.GetEmployee)
		v1.PATCH("/employees/:id", employeeHandler.UpdateEmployee)
		v1.POST("/employees/:id/badge", employeeHandler.RegenerateBadgeCode)
		v1.POST("/employees/:id/deactivate", employeeHandler.DeactivateEmployee)
		v1.POST("/employees/:id/reactivate", employeeHandler.ReactivateEmployee)
		v1.GET("/employees/:id/attendance/:day", attendanceHandler.Presence)

		v1.GET("/attendance", attendanceHandler.ListDay)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:    listenAddr,
			Handler: engine,
		},
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると Shutdown します。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP on %s: %w", s.httpServer.Addr, err)
		}
		return nil
	}
}

// Handler はテストからルーティングを直接叩けるようにハンドラを返します。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
