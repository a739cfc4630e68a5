package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/qiniu/x/xlog"
)

var (
	defaultLogger = xlog.New("default service logger")
)

const (
	// MediaFilePattern 录制文件在bucket中的key模式 response-<sessionId>-<questionIndex>-<timestamp>
	MediaFilePattern = "response-%s-%d-%d"
)

// StorageService 七牛对象存储控制器，负责面试录制文件的上传与访问地址生成。
type StorageService struct {
	conf utils.Config
	xl   *xlog.Logger
}

func NewStorageService(conf utils.Config) *StorageService {
	s := new(StorageService)
	s.conf = conf
	s.xl = xlog.New("storage service")
	return s
}

// UploadResponseMedia 上传一段录制内容，返回文件key与下载URL。
func (s *StorageService) UploadResponseMedia(xl *xlog.Logger, sessionID string, questionIndex int, file *multipart.FileHeader) (string, string, error) {
	if xl == nil {
		xl = s.xl
	}
	fileContent, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer fileContent.Close()

	byteContainer, err := ioutil.ReadAll(fileContent)
	if err != nil {
		return "", "", err
	}
	fileKey := fmt.Sprintf(MediaFilePattern, sessionID, questionIndex, time.Now().UnixNano())
	err = s.upload(s.conf.Storage.Bucket, byteContainer, fileKey, xl)
	if err != nil {
		return "", "", err
	}
	fileURL := s.conf.Storage.URLPrefix + "/" + fileKey
	return fileKey, fileURL, nil
}

// fileKey 上传文件的访问名
func (s *StorageService) upload(bucketName string, data []byte, fileKey string, xl *xlog.Logger) error {
	if xl == nil {
		xl = defaultLogger
	}
	mac := qbox.NewMac(s.conf.QiniuKeyPair.AccessKey, s.conf.QiniuKeyPair.SecretKey)
	putPolicy := storage.PutPolicy{
		Scope: bucketName,
	}
	upToken := putPolicy.UploadToken(mac)
	cfg := storage.Config{}
	// 空间对应的机房
	cfg.Zone = &storage.ZoneHuanan
	// 是否使用https域名
	cfg.UseHTTPS = true
	// 上传是否使用CDN上传加速
	cfg.UseCdnDomains = false
	formUploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}
	dataLen := int64(len(data))
	err := formUploader.Put(context.Background(), &ret, upToken, fileKey, bytes.NewReader(data), dataLen, nil)
	if err != nil {
		xl.Errorf("file uploading failed err:%v", err)
		return err
	}
	xl.Infof("file upload success, key %s", fileKey)
	return nil
}

// GenKodoClientToken 生成客户端直传token。
func GenKodoClientToken(conf utils.QiniuKeyPair, bucket string) string {
	mac := qbox.NewMac(conf.AccessKey, conf.SecretKey)
	putPolicy := storage.PutPolicy{
		Scope: bucket,
	}
	putPolicy.Expires = 3600 * 24
	upToken := putPolicy.UploadToken(mac)
	return upToken
}
