package main

import (
	"fmt"
	"os"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	ingredientsFile string
	clientEmail     string
	clientRole      string
	clientName      string

	importIngredientsCmd = &cobra.Command{
		Use:   "import-ingredients",
		Short: "Load the ingredient catalog from a name,unit CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(ingredientsFile)
			if err != nil {
				return err
			}
			defer f.Close()

			inserted, err := services.NewIngredientService(db).ImportCSV(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import %s: %w", ingredientsFile, err)
			}

			log.WithFields(log.Fields{
				"file":     ingredientsFile,
				"inserted": inserted,
			}).Info("Ingredients imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d ingredients\n", inserted)
			return nil
		},
	}

	createClientCmd = &cobra.Command{
		Use:   "create-client",
		Short: "Create an OAuth2 client credentials client for a user",
		Long: `Creates the user when missing, then registers an API client acting as
that user. The client secret is printed once and cannot be recovered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientRole != models.RoleUser && clientRole != models.RoleAdmin {
				return fmt.Errorf("invalid role %q: must be %s or %s", clientRole, models.RoleUser, models.RoleAdmin)
			}

			ctx := cmd.Context()
			user, created, err := services.NewUserService(db).EnsureUser(ctx, clientEmail, clientRole)
			if err != nil {
				return err
			}
			if created {
				log.WithField("user_id", user.ID).Info("User created for client")
			}

			client, secret, err := services.NewClientService(db).CreateClient(ctx, user.ID, services.ClientInput{Name: clientName})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user_id:       %d\n", user.ID)
			fmt.Fprintf(out, "client_id:     %s\n", client.ID)
			fmt.Fprintf(out, "client_secret: %s\n", secret)
			return nil
		},
	}
)

func init() {
	importIngredientsCmd.Flags().StringVarP(&ingredientsFile, "file", "f", "data/ingredients.csv", "CSV file with name,unit rows")

	createClientCmd.Flags().StringVar(&clientEmail, "email", "", "Email of the user the client acts as")
	createClientCmd.Flags().StringVar(&clientRole, "role", models.RoleUser, "Role for a newly created user (user|admin)")
	createClientCmd.Flags().StringVar(&clientName, "name", "cli client", "Client display name")
	_ = createClientCmd.MarkFlagRequired("email")
}
