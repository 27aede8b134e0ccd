package main

import (
	"context"
	"fmt"
	"log"

	"github.com/akinalp/pazar/config"
	"github.com/akinalp/pazar/database"
	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/repository"
	"github.com/akinalp/pazar/services"
	"github.com/spf13/cobra"
)

// newMigrateCmd, server'ı başlatmadan bekleyen migration'ları uygular.
// Deploy pipeline'ında "migrate → serve" sırası için.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bekleyen veritabanı migration'larını uygular",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(commandContext(cmd), database.Migrations())
			if err != nil {
				return err
			}
			log.Printf("[migrate] %d migration(s) applied", applied)
			return nil
		},
	}
}

// newAdminCmd, "admin create" alt komutu. Kayıt endpoint'i sadece customer
// oluşturduğu için ilk admin buradan açılır. Kullanıcı zaten varsa admin yapılır;
// bu durumda --password gerekmez.
func newAdminCmd() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin hesap işlemleri",
	}

	var req models.CreateUserRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Admin hesabı oluşturur ya da mevcut kullanıcıyı admin yapar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.Database.Path, database.Migrations())
			if err != nil {
				return err
			}
			defer db.Close()

			users := repository.NewSQLiteUserRepo(db.Conn)
			user, promoted, err := services.EnsureAdmin(commandContext(cmd), users, &req)
			if err != nil {
				return fmt.Errorf("failed to create admin %q: %w", req.Username, err)
			}

			if promoted {
				log.Printf("[admin] existing user promoted to admin: %s (%s)", user.Username, user.ID)
			} else {
				log.Printf("[admin] admin user created: %s (%s)", user.Username, user.ID)
			}
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.Username, "username", "", "kullanıcı adı")
	createCmd.Flags().StringVar(&req.Email, "email", "", "email adresi")
	createCmd.Flags().StringVar(&req.Password, "password", "", "şifre (en az 8 karakter)")
	createCmd.Flags().StringVar(&req.DisplayName, "display-name", "", "görünen ad")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(createCmd)
	return adminCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
