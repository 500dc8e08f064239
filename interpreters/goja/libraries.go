/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package goja

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path/filepath"
)

// Libraries resolves a name given in a filter's "requires" to
// ECMAScript source.
type Libraries func(ctx context.Context, name string) (string, error)

// DefaultLibraries is used when an Interpreter has no Libraries.
var DefaultLibraries = FileLibraries(".")

// FileLibraries resolves names that are URLs with schemes "file",
// "http", or "https".  File paths are relative to the given
// directory.
func FileLibraries(dir string) Libraries {
	return func(ctx context.Context, name string) (string, error) {
		u, err := url.Parse(name)
		if err != nil {
			return "", fmt.Errorf("bad library '%s': %w", name, err)
		}
		switch u.Scheme {
		case "file":
			// "file://x.js" puts "x.js" in the host.
			bs, err := ioutil.ReadFile(filepath.Join(dir, u.Host, u.Path))
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			return fetch(ctx, name)
		case "":
			return "", fmt.Errorf("bad library '%s': no scheme", name)
		default:
			return "", fmt.Errorf("unknown scheme '%s'", u.Scheme)
		}
	}
}

func fetch(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequest("GET", link, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("library fetch status %s", resp.Status)
	}
	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// MapLibraries resolves names from the given map.
func MapLibraries(srcs map[string]string) Libraries {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}
