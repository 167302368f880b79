/*
Copyright © 2026 the esom authors.
This file is part of esom.

esom is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

esom is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with esom.  If not, see <http://www.gnu.org/licenses/>.
*/

package esomutil

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing file locally. If
// not and it is a URL, it downloads the file and returns the path to
// the downloaded copy. Anything else is returned unchanged and left
// for the file-existence check to reject.
func maybeDownload(path string) string {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path)
	}
	return path
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Transient failures are retried
// with exponential backoff; after the retries are exhausted the
// original URL is returned so the caller reports a sensible error.
func downloadHTTP(path string) string {
	dir, err := os.MkdirTemp("", "esom")
	if err != nil {
		panic(fmt.Errorf("esom: failed creating temporary download directory: %v", err))
	}
	local := filepath.Join(dir, filepath.Base(path))

	get := func() error {
		resp, err := http.Get(path)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("esom: downloading %s: status %s", path, resp.Status)
		}
		w, err := os.Create(local)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, resp.Body); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	notify := func(err error, d time.Duration) {
		logrus.WithFields(logrus.Fields{
			"url":   path,
			"retry": d,
		}).Warnf("download failed: %v", err)
	}
	if err := backoff.RetryNotify(get, backoff.NewExponentialBackOff(), notify); err != nil {
		logrus.WithField("url", path).Errorf("download failed permanently: %v", err)
		return path
	}
	return local
}
