package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "ehr-auth-test:latest"

	adminNationalCode = "0000000000"
	adminPhone        = "09120000000"
	adminPassword     = "Admin-Pass-123"

	encryptionKey = "e2e-encryption-key-material"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

type containerOpt func(*testcontainers.ContainerRequest)

func withEnv(key, value string) containerOpt {
	return func(req *testcontainers.ContainerRequest) {
		req.Env[key] = value
	}
}

func withNetwork(name string) containerOpt {
	return func(req *testcontainers.ContainerRequest) {
		req.Networks = append(req.Networks, name)
	}
}

// setupAuthContainer starts the auth service in a container and returns the
// base URL. The bootstrap administrator is created on startup.
func setupAuthContainer(t *testing.T, opts ...containerOpt) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"ENV":                      "test",
			"LOG_LEVEL":                "info",
			"LOG_FORMAT":               "json",
			"DATABASE_FILE":            "/data/auth.db",
			"PEPPER_FILE":              "/data/pepper",
			"ENCRYPTION_KEY":           encryptionKey,
			"BOOTSTRAP_ADMIN_PASSWORD": adminPassword,
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}
	for _, opt := range opts {
		opt(&req)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// setupRedis starts redis on a fresh network and returns the network name
// and the URL the auth container reaches it under.
func setupRedis(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := nw.Remove(context.Background()); err != nil {
			t.Logf("failed to remove network: %v", err)
		}
	})

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "redis:7-alpine",
			ExposedPorts:   []string{"6379/tcp"},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"redis"}},
			WaitingFor:     wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	return nw.Name, "redis://redis:6379/0"
}

// loginAdmin authenticates the bootstrap administrator.
func loginAdmin(t *testing.T, client *authsdk.SDKClient) *authsdk.Session {
	t.Helper()

	sess, err := client.Authenticate(t.Context(), adminNationalCode, adminPassword, "")
	require.NoError(t, err, "bootstrap admin login should succeed")
	return sess
}

// createDoctor registers a doctor through the admin API.
func createDoctor(t *testing.T, admin *authsdk.Session, nationalCode, phone, password string) *authsdk.User {
	t.Helper()

	user, err := admin.CreateUser(t.Context(), authsdk.CreateUserRequest{
		FullName:     "Dr. Reza Ahmadi",
		NationalCode: nationalCode,
		PhoneNumber:  phone,
		Password:     password,
		Role:         "doctor",
	})
	require.NoError(t, err)
	return user
}

// enrollTOTP runs the enrollment flow and returns the secret along with the
// refreshed session.
func enrollTOTP(t *testing.T, client *authsdk.SDKClient, sess *authsdk.Session) (string, *authsdk.Session) {
	t.Helper()

	enroll, err := sess.EnrollTOTP(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, enroll.Secret)
	require.Contains(t, enroll.QRCode, "data:image/png;base64,")

	code, err := totp.GenerateCode(enroll.Secret, time.Now())
	require.NoError(t, err)

	tokenResp, err := sess.VerifyTOTP(t.Context(), code)
	require.NoError(t, err)
	require.True(t, tokenResp.Principal.TOTPEnabled)

	return enroll.Secret, client.NewSessionFromToken(tokenResp.AccessToken)
}

// requireAPIError asserts err is an API error with the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) *authsdk.APIError {
	t.Helper()

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
