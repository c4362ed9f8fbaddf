// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sftp deploys workspace files to a remote host over SFTP. It
// authenticates with a configured private key and falls back to a running
// SSH agent, verifies the remote host key against the pinned key from the
// target configuration, and uploads through a temporary file that is moved
// into place atomically.
package sftp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DialTimeout bounds the TCP/SSH handshake for one connection attempt.
const DialTimeout = 10 * time.Second

// ErrPassphraseRequired reports an encrypted private key with no
// passphrase source available.
var ErrPassphraseRequired = errors.New("private key is passphrase protected")

// PassphraseFunc, when set, supplies the passphrase for an encrypted
// private key. The CLI wires a terminal prompt here; it stays nil in
// non-interactive use.
var PassphraseFunc func(target string) ([]byte, error)

// Deployer holds one SSH/SFTP connection to a remote host.
type Deployer struct {
	client *ssh.Client
	sftp   *sftp.Client
}

// NewDeployer connects to host as user. privateKey is the PEM-encoded key
// material (may be empty to go straight to the agent); pinnedHostKey is
// the expected remote host key in authorized_keys format. An empty pin
// rejects the connection rather than trusting an unknown host.
func NewDeployer(host, user string, privateKey []byte, pinnedHostKey string) (*Deployer, error) {
	hostKeyCallback := func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		// The hostname passed to the callback can include the port; strip
		// it for the error messages.
		h, _, err := net.SplitHostPort(hostname)
		if err != nil {
			h = hostname
		}

		presented := string(ssh.MarshalAuthorizedKey(key))
		if pinnedHostKey == "" {
			return fmt.Errorf("unknown host key for %s. pin it via the target's hostKey setting", h)
		}
		if pinnedHostKey != presented {
			return fmt.Errorf("!!! HOST KEY MISMATCH FOR %s !!!\nRemote key presented: %s\nThis could be a man-in-the-middle attack", h, presented)
		}
		return nil
	}

	// Add port 22 if not specified.
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "22")
	}

	var finalErr error

	// --- Attempt 1: the configured private key ---
	if len(privateKey) > 0 {
		signer, err := parseSigner(privateKey, host)
		if err != nil {
			return nil, err
		}

		config := &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         DialTimeout,
		}

		client, err := ssh.Dial("tcp", addr, config)
		if err == nil {
			sftpClient, sftpErr := sftp.NewClient(client)
			if sftpErr != nil {
				client.Close()
				return nil, fmt.Errorf("failed to create sftp client: %w", sftpErr)
			}
			return &Deployer{client: client, sftp: sftpClient}, nil
		}

		// Anything but an auth failure fails fast; an auth failure is kept
		// around while we try the agent.
		if !IsAuthenticationError(err) {
			return nil, fmt.Errorf("connection with configured key failed: %w", err)
		}
		finalErr = err
	}

	// --- Attempt 2: the SSH agent as a fallback ---
	agentClient := getSSHAgent()
	if agentClient == nil {
		if finalErr != nil {
			return nil, fmt.Errorf("key authentication failed, and no SSH agent available for fallback: %w", finalErr)
		}
		return nil, errors.New("no authentication method available (no private key configured and no ssh agent found)")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeysCallback(agentClient.Signers)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         DialTimeout,
	}

	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("connection with ssh agent failed: %w", err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}

	return &Deployer{client: client, sftp: sftpClient}, nil
}

// parseSigner parses the key material, consulting PassphraseFunc when the
// key is encrypted.
func parseSigner(privateKey []byte, target string) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err == nil {
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}
	if PassphraseFunc == nil {
		return nil, ErrPassphraseRequired
	}
	passphrase, err := PassphraseFunc(target)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range passphrase {
			passphrase[i] = 0
		}
	}()
	signer, err = ssh.ParsePrivateKeyWithPassphrase(privateKey, passphrase)
	if err != nil {
		return nil, fmt.Errorf("unable to decrypt private key: %w", err)
	}
	return signer, nil
}

// MkdirAll creates the remote directory and any missing parents.
func (d *Deployer) MkdirAll(dir string) error {
	return d.sftp.MkdirAll(dir)
}

// WriteFile uploads data and moves it into place atomically. The upload
// goes through a temporary name in the destination directory so a reader
// never observes a half-written file.
func (d *Deployer) WriteFile(remotePath string, data []byte) error {
	dir := path.Dir(remotePath)
	tmpPath := path.Join(dir, fmt.Sprintf(".deploymaster.%d.tmp", time.Now().UnixNano()))

	f, err := d.sftp.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file on remote: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		// Best effort to clean up the failed upload.
		_ = d.sftp.Remove(tmpPath)
		return fmt.Errorf("failed to write to temporary file on remote: %w", err)
	}
	f.Close()

	if err := d.sftp.Chmod(tmpPath, 0644); err != nil {
		_ = d.sftp.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temporary file: %w", err)
	}

	if err := d.sftp.Rename(tmpPath, remotePath); err != nil {
		// Rename refuses to clobber on some servers; replace explicitly.
		_ = d.sftp.Remove(remotePath)
		if err := d.sftp.Rename(tmpPath, remotePath); err != nil {
			_ = d.sftp.Remove(tmpPath)
			return fmt.Errorf("failed to move file into place: %w", err)
		}
	}

	return nil
}

// ReadFile returns the content of a remote file.
func (d *Deployer) ReadFile(remotePath string) ([]byte, error) {
	f, err := d.sftp.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read from remote file %s: %w", remotePath, err)
	}
	return content, nil
}

// Close closes the underlying SSH and SFTP clients.
func (d *Deployer) Close() error {
	if d.sftp != nil {
		d.sftp.Close()
	}
	if d.client != nil {
		d.client.Close()
	}
	return nil
}
