package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"alms/config"
	"alms/internal/model"
	"alms/internal/service"
	"alms/pkg/logger"
	"alms/storage"
)

type employeeCreator interface {
	CreateEmployee(ctx context.Context, employee *model.Employee) error
}

// 录入员工：seed -name Asha -passkey 1234 -email asha@example.com -id E001 -phone 555-0101
func main() {
	os.Exit(run(os.Args[1:]))
}

// run 返回退出码，defer 的清理在退出前执行
func run(args []string) int {
	employee, err := parseFlags(args, os.Stderr)
	if err != nil {
		return 2
	}

	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Init()
	defer logger.Sync()

	if err := storage.Init(storage.Options{}); err != nil {
		logger.Logger.Error("Failed to initialize storage", zap.Error(err))
		return 1
	}
	defer storage.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return create(ctx, service.Auth(), &employee)
}

func parseFlags(args []string, output io.Writer) (model.Employee, error) {
	var employee model.Employee

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&employee.Name, "name", "", "employee name")
	fs.StringVar(&employee.Passkey, "passkey", "", "login passkey, stored as a bcrypt hash")
	fs.StringVar(&employee.Email, "email", "", "employee email")
	fs.StringVar(&employee.RegisteredID, "id", "", "registered id, unique login key")
	fs.StringVar(&employee.ContactNumber, "phone", "", "contact number")
	if err := fs.Parse(args); err != nil {
		return employee, err
	}

	if employee.Name == "" || employee.Passkey == "" || employee.RegisteredID == "" {
		err := errors.New("name, passkey and id are required")
		fmt.Fprintln(output, err)
		fs.Usage()
		return employee, err
	}
	return employee, nil
}

func create(ctx context.Context, creator employeeCreator, employee *model.Employee) int {
	if err := creator.CreateEmployee(ctx, employee); err != nil {
		logger.Logger.Error("Failed to create employee",
			zap.String("registered_id", employee.RegisteredID),
			zap.Error(err),
		)
		return 1
	}

	logger.Logger.Info("Employee created",
		zap.String("registered_id", employee.RegisteredID),
		zap.Int64("id", employee.ID),
	)
	return 0
}
